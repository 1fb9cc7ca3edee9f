package retrieval

import (
	"sort"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
)

// NoPrediction is emitted when no statute survives the vote.
const NoPrediction = "N/A"

// Neighbor is one retrieved case feeding the statute vote.
type Neighbor struct {
	Case  legalcase.CaseRecord
	Score float64
}

// VotePolicy selects which ranked statutes make it into the prediction.
// Exactly one selection mode is active: a minimum accumulated weight, or a
// fixed number of top statutes.
type VotePolicy struct {
	UseThreshold bool
	Threshold    float64
	TopN         int
}

// DefaultVotePolicy keeps the top 10 statutes by accumulated weight.
func DefaultVotePolicy() VotePolicy {
	return VotePolicy{
		UseThreshold: false,
		Threshold:    0.5,
		TopN:         10,
	}
}

// WeightedMajorityVote predicts the applicable statutes for a query from its
// retrieved neighbors.  Every neighbor's similarity score is added to the
// accumulated weight of each statute cited in that neighbor's stored statute
// field; statutes are then ranked by weight descending, with ties keeping
// first-seen order, and filtered by the policy.  Returns NoPrediction when no
// neighbor cites anything or nothing survives the filter, otherwise the
// ranked citations joined as a stored statute field.
func WeightedMajorityVote(neighbors []Neighbor, policy VotePolicy) string {
	weights := make(map[string]float64)
	order := make([]string, 0)

	for _, n := range neighbors {
		for _, citation := range n.Case.Statutes() {
			if _, seen := weights[citation]; !seen {
				order = append(order, citation)
			}
			weights[citation] += n.Score
		}
	}
	if len(order) == 0 {
		return NoPrediction
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return weights[ranked[i]] > weights[ranked[j]]
	})

	var selected []string
	if policy.UseThreshold {
		for _, citation := range ranked {
			if weights[citation] >= policy.Threshold {
				selected = append(selected, citation)
			}
		}
	} else {
		n := policy.TopN
		if n > len(ranked) {
			n = len(ranked)
		}
		selected = ranked[:n]
	}

	if len(selected) == 0 {
		return NoPrediction
	}
	return legalcase.JoinStatutes(selected)
}

// Prediction is one row of a per-method prediction table: the query, the
// voted statute string, and the literal retrieved ids the vote saw.
type Prediction struct {
	QueryID           string
	PredictedSolution string
	TopCaseIDs        []string
}
