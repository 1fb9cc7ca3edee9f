// Package evaluation implements the information-retrieval metrics used to
// score retrieval rankings (precision/recall/F1 at a cutoff, average
// precision, reciprocal rank) and the micro-aggregated confusion tally used
// to score statute predictions.  All functions are pure; loading artifacts
// and writing pivot tables is the application layer's job.
package evaluation

import (
	"fmt"
)

// DefaultCutoff is the rank cutoff for the @K retrieval metrics.
const DefaultCutoff = 5

// RankingMetrics holds one query's retrieval scores for one method.
type RankingMetrics struct {
	Precision        float64
	Recall           float64
	F1               float64
	AveragePrecision float64
	ReciprocalRank   float64
}

// MetricNames returns the ranking metric display names for cutoff k, in the
// same order as RankingMetrics.Values.
func MetricNames(k int) []string {
	return []string{
		fmt.Sprintf("Precision@%d", k),
		fmt.Sprintf("Recall@%d", k),
		fmt.Sprintf("F1-Score@%d", k),
		"MAP",
		"MRR",
	}
}

// Values returns the metric values in MetricNames order.
func (m RankingMetrics) Values() []float64 {
	return []float64{m.Precision, m.Recall, m.F1, m.AveragePrecision, m.ReciprocalRank}
}

// EvaluateRanking scores one retrieved ranking against its relevant set.
func EvaluateRanking(retrievedIDs, relevantIDs []string, k int) RankingMetrics {
	return RankingMetrics{
		Precision:        PrecisionAtK(retrievedIDs, relevantIDs, k),
		Recall:           RecallAtK(retrievedIDs, relevantIDs, k),
		F1:               F1AtK(retrievedIDs, relevantIDs, k),
		AveragePrecision: AveragePrecision(retrievedIDs, relevantIDs),
		ReciprocalRank:   ReciprocalRank(retrievedIDs, relevantIDs),
	}
}

// PrecisionAtK is the fraction of the first k retrieved ids that are
// relevant.  An empty ranking scores 0.
func PrecisionAtK(retrievedIDs, relevantIDs []string, k int) float64 {
	if len(retrievedIDs) == 0 {
		return 0.0
	}
	topK := truncate(retrievedIDs, k)
	relevant := toSet(relevantIDs)

	hits := 0
	for id := range toSet(topK) {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(topK))
}

// RecallAtK is the fraction of the relevant set found within the first k
// retrieved ids.  An empty relevant set scores 0.
func RecallAtK(retrievedIDs, relevantIDs []string, k int) float64 {
	relevant := toSet(relevantIDs)
	if len(relevant) == 0 {
		return 0.0
	}

	hits := 0
	for id := range toSet(truncate(retrievedIDs, k)) {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// F1AtK is the harmonic mean of PrecisionAtK and RecallAtK, 0 when both are 0.
func F1AtK(retrievedIDs, relevantIDs []string, k int) float64 {
	p := PrecisionAtK(retrievedIDs, relevantIDs, k)
	r := RecallAtK(retrievedIDs, relevantIDs, k)
	if p+r == 0 {
		return 0.0
	}
	return 2 * p * r / (p + r)
}

// AveragePrecision sums the precision at each relevant hit over the whole
// ranking and divides by the size of the relevant list.  No hits or no
// relevant list scores 0.
func AveragePrecision(retrievedIDs, relevantIDs []string) float64 {
	if len(relevantIDs) == 0 {
		return 0.0
	}
	relevant := toSet(relevantIDs)

	found := 0
	sum := 0.0
	for i, id := range retrievedIDs {
		if relevant[id] {
			found++
			sum += float64(found) / float64(i+1)
		}
	}
	if found == 0 {
		return 0.0
	}
	return sum / float64(len(relevantIDs))
}

// ReciprocalRank is 1/rank of the first relevant hit, 0 when nothing
// relevant is retrieved.
func ReciprocalRank(retrievedIDs, relevantIDs []string) float64 {
	relevant := toSet(relevantIDs)
	for i, id := range retrievedIDs {
		if relevant[id] {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

// MeanRankings averages per-query metrics component-wise.  An empty input
// yields the zero value.
func MeanRankings(all []RankingMetrics) RankingMetrics {
	if len(all) == 0 {
		return RankingMetrics{}
	}

	var sum RankingMetrics
	for _, m := range all {
		sum.Precision += m.Precision
		sum.Recall += m.Recall
		sum.F1 += m.F1
		sum.AveragePrecision += m.AveragePrecision
		sum.ReciprocalRank += m.ReciprocalRank
	}
	n := float64(len(all))
	return RankingMetrics{
		Precision:        sum.Precision / n,
		Recall:           sum.Recall / n,
		F1:               sum.F1 / n,
		AveragePrecision: sum.AveragePrecision / n,
		ReciprocalRank:   sum.ReciprocalRank / n,
	}
}

func truncate(ids []string, k int) []string {
	if k >= 0 && len(ids) > k {
		return ids[:k]
	}
	return ids
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
