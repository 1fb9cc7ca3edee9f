package evaluation

// DefaultMatchThreshold is the minimum overlap ratio between true and
// predicted statute sets for a prediction to count as a match.
const DefaultMatchThreshold = 0.24

// PredictionTally micro-aggregates statute-prediction outcomes across every
// evaluated query for one method.  True positives, false positives, and false
// negatives accumulate per citation; matches accumulate per query.
type PredictionTally struct {
	TP      int
	FP      int
	FN      int
	Matches int
	Total   int
}

// MatchRatio is the fraction of the true statute set that the prediction
// recovered: |true ∩ predicted| / max(|true|, 1).  Duplicates in either list
// are folded before comparing.
func MatchRatio(trueStatutes, predicted []string) float64 {
	trueSet := toSet(trueStatutes)
	inter := intersectionSize(trueSet, toSet(predicted))

	denom := len(trueSet)
	if denom < 1 {
		denom = 1
	}
	return float64(inter) / float64(denom)
}

// Observe scores one query's prediction against the ground truth and folds
// the outcome into the tally.  A prediction whose match ratio reaches
// matchThreshold counts as a match.
func (t *PredictionTally) Observe(trueStatutes, predicted []string, matchThreshold float64) {
	trueSet := toSet(trueStatutes)
	predSet := toSet(predicted)
	inter := intersectionSize(trueSet, predSet)

	denom := len(trueSet)
	if denom < 1 {
		denom = 1
	}
	if float64(inter)/float64(denom) >= matchThreshold {
		t.Matches++
	}
	t.Total++

	t.TP += inter
	t.FP += len(predSet) - inter
	t.FN += len(trueSet) - inter
}

// Accuracy is the percentage of evaluated queries whose prediction matched.
func (t PredictionTally) Accuracy() float64 {
	if t.Total == 0 {
		return 0.0
	}
	return float64(t.Matches) / float64(t.Total) * 100
}

// Precision is the micro precision as a percentage.
func (t PredictionTally) Precision() float64 {
	if t.TP+t.FP == 0 {
		return 0.0
	}
	return float64(t.TP) / float64(t.TP+t.FP) * 100
}

// Recall is the micro recall as a percentage.
func (t PredictionTally) Recall() float64 {
	if t.TP+t.FN == 0 {
		return 0.0
	}
	return float64(t.TP) / float64(t.TP+t.FN) * 100
}

// F1 is the harmonic mean of Precision and Recall as a percentage, 0 when
// both are 0.
func (t PredictionTally) F1() float64 {
	p := t.Precision() / 100
	r := t.Recall() / 100
	if p+r == 0 {
		return 0.0
	}
	return 2 * p * r / (p + r) * 100
}

// PredictionMetricNames returns the prediction metric display names in the
// same order as PredictionTally.Values.
func PredictionMetricNames() []string {
	return []string{"Accuracy", "Precision", "Recall", "F1-Score"}
}

// Values returns the percentage metrics in PredictionMetricNames order.
func (t PredictionTally) Values() []float64 {
	return []float64{t.Accuracy(), t.Precision(), t.Recall(), t.F1()}
}

func intersectionSize(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if b[id] {
			n++
		}
	}
	return n
}
