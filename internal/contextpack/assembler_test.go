package contextpack

import "testing"

func TestAssemble_RespectsBudget(t *testing.T) {
	in := Input{
		Candidates: []Candidate{
			{NodeID: "a", Body: "func A() {\n  doSomething()\n  doMore()\n}"},
			{NodeID: "b", Body: "func B() {\n  doSomethingElse()\n}"},
		},
		Near: []CallerCallee{
			{NodeID: "caller1", Signature: "func Caller1()"},
			{NodeID: "callee1", Signature: "func Callee1()"},
		},
		Extended: []ExtendedItem{
			{NodeID: "testA", Text: "func TestA(t *testing.T) { A() }"},
		},
		Background: "src/\n  a.go\n  b.go\n",
	}

	res := Assemble(in, 4000)
	if res.TotalTokens > 4000 {
		t.Fatalf("expected total tokens <= budget, got %d", res.TotalTokens)
	}
}

func TestAssemble_ZeroBudgetProducesNothing(t *testing.T) {
	res := Assemble(Input{Candidates: []Candidate{{NodeID: "a", Body: "func A() {}"}}}, 0)
	if len(res.Sections) != 0 || res.TotalTokens != 0 {
		t.Fatalf("expected empty result for zero budget, got %+v", res)
	}
}

func TestAssemble_TinyBudgetSkipsCoreInFavorOfNear(t *testing.T) {
	in := Input{
		Candidates: []Candidate{
			{NodeID: "a", Body: "func processLargeAmountsOfDataAcrossManyLines() {\n  step1()\n  step2()\n  step3()\n}"},
		},
		Near: []CallerCallee{
			{NodeID: "caller1", Signature: "func caller1()"},
		},
	}

	res := Assemble(in, 3)
	if res.CoreOmitted != true {
		t.Fatalf("expected Core to be omitted for a budget smaller than its minimum candidate cost")
	}
	for _, s := range res.Sections {
		if s.Tier == TierCore {
			t.Fatalf("expected no Core section when Core was omitted, got %+v", s)
		}
	}
}

func TestAssemble_RedistributesUnusedCoreToNear(t *testing.T) {
	in := Input{
		Candidates: []Candidate{
			{NodeID: "a", Body: "func A() {}"},
		},
		Near: []CallerCallee{
			{NodeID: "caller1", Signature: "func Caller1()"},
			{NodeID: "caller2", Signature: "func Caller2()"},
		},
	}

	res := Assemble(in, 2000)
	if !res.Redistributed {
		t.Fatalf("expected redistribution to be reported when Core finishes well under its share")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	in := Input{
		Candidates: []Candidate{{NodeID: "a", Body: "func A() { doWork() }"}},
		Near:       []CallerCallee{{NodeID: "b", Signature: "func B()"}},
		Background: "src/\n  a.go\n",
	}

	first := Assemble(in, 500)
	second := Assemble(in, 500)

	if len(first.Sections) != len(second.Sections) {
		t.Fatalf("expected identical section count across runs")
	}
	for i := range first.Sections {
		if first.Sections[i] != second.Sections[i] {
			t.Fatalf("expected identical section %d across runs: %+v vs %+v", i, first.Sections[i], second.Sections[i])
		}
	}
}
