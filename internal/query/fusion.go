package query

import "sort"

// Reciprocal-rank fusion constants.
const (
	rrfK           = 60.0
	rrfRank1Bonus  = 0.05
	rrfRank23Bonus = 0.02
)

// RankedList is one ranked source list (keyword or semantic) feeding RRF.
// IDs are in rank order, best match first.
type RankedList struct {
	Name string
	IDs  []string
}

// rrfContribution is a single list's contribution to a document's fused
// score at the given 1-based rank, including the top-rank bonus.
func rrfContribution(rank int) float64 {
	score := 1.0 / (rrfK + float64(rank))
	switch rank {
	case 1:
		score += rrfRank1Bonus
	case 2, 3:
		score += rrfRank23Bonus
	}
	return score
}

// FusedResult is the outcome of reciprocal-rank fusion for one document.
type FusedResult struct {
	ID         string
	FusedScore float64
	Origin     map[string]int // list name -> 1-based rank
	PageRank   float64
}

// FuseRRF combines ranked lists via reciprocal-rank fusion (k=60). Ties are
// broken by PageRank score descending, then by id ascending for determinism.
func FuseRRF(lists []RankedList, pprScores map[string]float64) []FusedResult {
	scores := make(map[string]float64)
	origin := make(map[string]map[string]int)

	for _, list := range lists {
		for i, id := range list.IDs {
			rank := i + 1
			scores[id] += rrfContribution(rank)
			if origin[id] == nil {
				origin[id] = make(map[string]int)
			}
			origin[id][list.Name] = rank
		}
	}

	results := make([]FusedResult, 0, len(scores))
	for id, score := range scores {
		results = append(results, FusedResult{
			ID:         id,
			FusedScore: score,
			Origin:     origin[id],
			PageRank:   pprScores[id],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		if results[i].PageRank != results[j].PageRank {
			return results[i].PageRank > results[j].PageRank
		}
		return results[i].ID < results[j].ID
	})

	return results
}
