package query

import "testing"

func TestFuseRRF_BothListsRank1OutranksSingleList(t *testing.T) {
	lists := []RankedList{
		{Name: "keyword", IDs: []string{"authenticateUser", "signIn", "other5"}},
		{Name: "semantic", IDs: []string{"signIn", "other2", "authenticateUser"}},
	}

	results := FuseRRF(lists, nil)

	rank := make(map[string]int, len(results))
	for i, r := range results {
		rank[r.ID] = i
	}

	// authenticateUser: keyword rank 1, semantic rank 3.
	// signIn: keyword rank 2, semantic rank 1.
	// Both must beat a document appearing only in one list.
	if _, ok := rank["authenticateUser"]; !ok {
		t.Fatalf("expected authenticateUser in fused results")
	}
	if _, ok := rank["signIn"]; !ok {
		t.Fatalf("expected signIn in fused results")
	}
	if rank["authenticateUser"] > rank["other5"] {
		t.Errorf("authenticateUser (rank1 keyword + rank3 semantic) should outrank other5 (keyword rank3 only)")
	}
	if rank["signIn"] > rank["other2"] {
		t.Errorf("signIn (rank2 keyword + rank1 semantic) should outrank other2 (semantic rank2 only)")
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	lists := []RankedList{{Name: "keyword", IDs: []string{"a", "b", "c"}}}
	r1 := FuseRRF(lists, nil)
	r2 := FuseRRF(lists, nil)
	for i := range r1 {
		if r1[i].ID != r2[i].ID || r1[i].FusedScore != r2[i].FusedScore {
			t.Fatalf("fusion is not deterministic across identical calls")
		}
	}
}

func TestFuseRRF_TieBrokenByPageRankThenID(t *testing.T) {
	lists := []RankedList{
		{Name: "a", IDs: []string{"x"}},
		{Name: "b", IDs: []string{"y"}},
	}
	ppr := map[string]float64{"x": 0.9, "y": 0.1}

	results := FuseRRF(lists, ppr)
	if results[0].FusedScore != results[1].FusedScore {
		t.Fatalf("expected equal fused scores for this fixture, got %v and %v", results[0].FusedScore, results[1].FusedScore)
	}
	if results[0].ID != "x" {
		t.Errorf("expected higher-PageRank document x to win the tie, got %s first", results[0].ID)
	}
}

func TestRRFContribution_TopRankBonus(t *testing.T) {
	r1 := rrfContribution(1)
	r2 := rrfContribution(2)
	r4 := rrfContribution(4)

	base1 := 1.0 / (rrfK + 1)
	if r1 <= base1 {
		t.Errorf("rank 1 should receive the +0.05 bonus on top of the base RRF term")
	}
	if r2 <= 1.0/(rrfK+2) {
		t.Errorf("rank 2 should receive the +0.02 bonus")
	}
	if r4 != 1.0/(rrfK+4) {
		t.Errorf("rank 4 should receive no bonus, got %v", r4)
	}
}
