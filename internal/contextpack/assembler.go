package contextpack

// Tier names, used both as map keys and in AssembleResult.TierTokens.
const (
	TierCore       = "core"
	TierNear       = "near"
	TierExtended   = "extended"
	TierBackground = "background"
)

// tierShares are the nominal budget partitions: 40/25/20/15.
var tierShares = map[string]float64{
	TierCore:       0.40,
	TierNear:       0.25,
	TierExtended:   0.20,
	TierBackground: 0.15,
}

// tierOrder is the fill order; each tier may donate its unused remainder to
// the next one in this list ("adaptive redistribution").
var tierOrder = []string{TierCore, TierNear, TierExtended, TierBackground}

// Candidate is one ranked retrieval result eligible for the Core tier. Body
// is its full source text; Signature is its signature-only rendering for
// the Near tier.
type Candidate struct {
	NodeID    string
	FilePath  string
	Body      string
	Signature string
}

// CallerCallee is a signature-only neighbor of a Core candidate, placed in
// the Near tier.
type CallerCallee struct {
	NodeID    string
	Signature string
}

// ExtendedItem is a test or sibling declaration placed in the Extended
// tier.
type ExtendedItem struct {
	NodeID string
	Text   string
}

// Input bundles everything the assembler draws from to fill the four
// tiers. Callers is responsible for ranking Candidates (normally via
// Retrieval) before calling Assemble; Assemble does not re-rank them.
type Input struct {
	Candidates  []Candidate
	Near        []CallerCallee
	Extended    []ExtendedItem
	Background  string // compact directory listing text
}

// Section is one rendered, token-counted piece of the assembled context.
type Section struct {
	Tier   string
	NodeID string
	Text   string
	Tokens int
}

// Result is the assembled context: ordered sections plus bookkeeping for
// the guarantees callers rely on (budget respected, tier shares
// reported when redistribution fired).
type Result struct {
	Sections        []Section
	TotalTokens      int
	TierTokens       map[string]int
	TierBudgets      map[string]int
	Redistributed    bool
	CoreOmitted      bool // tiny-budget open question, see Assemble doc
}

// Assemble fills Core, Near, Extended, and Background in order within
// budget B, donating any tier's unused remainder to the next tier.
// Given the same Input and B, Assemble always produces the same output.
//
// Tiny-budget rule: when Core cannot fit even
// one candidate at its minimum rendering (its first line), Core is skipped
// entirely and its whole share is donated to Near, whose signature-only
// items are cheap enough to still convey something useful. Background is
// trimmed first if the total would otherwise exceed B.
func Assemble(in Input, budget int) Result {
	res := Result{
		TierTokens:  map[string]int{},
		TierBudgets: map[string]int{},
	}
	if budget <= 0 {
		return res
	}

	remaining := map[string]int{}
	for _, tier := range tierOrder {
		remaining[tier] = int(float64(budget) * tierShares[tier])
	}
	// Assign any rounding remainder to Core so the four shares always sum
	// to budget exactly.
	assigned := 0
	for _, tier := range tierOrder {
		assigned += remaining[tier]
	}
	remaining[TierCore] += budget - assigned
	for tier, v := range remaining {
		res.TierBudgets[tier] = v
	}

	coreMinCost := 0
	if len(in.Candidates) > 0 {
		coreMinCost = EstimateTokens(firstLine(in.Candidates[0].Body))
	}
	if len(in.Candidates) > 0 && coreMinCost > remaining[TierCore] {
		res.CoreOmitted = true
		remaining[TierNear] += remaining[TierCore]
		remaining[TierCore] = 0
		res.Redistributed = true
	}

	donate := func(from, to string, used int) {
		leftover := remaining[from] - used
		if leftover > 0 {
			remaining[to] += leftover
			res.Redistributed = true
		}
	}

	coreUsed := fillCore(&res, in.Candidates, remaining[TierCore])
	donate(TierCore, TierNear, coreUsed)

	nearUsed := fillNear(&res, in.Near, remaining[TierNear])
	donate(TierNear, TierExtended, nearUsed)

	extUsed := fillExtended(&res, in.Extended, remaining[TierExtended])
	donate(TierExtended, TierBackground, extUsed)

	fillBackground(&res, in.Background, remaining[TierBackground])

	for _, s := range res.Sections {
		res.TotalTokens += s.Tokens
	}

	// Background is trimmed first if rounding pushed the total over budget.
	if res.TotalTokens > budget {
		trimBackground(&res, budget)
	}

	return res
}

func fillCore(res *Result, candidates []Candidate, budget int) int {
	used := 0
	for _, c := range candidates {
		tokens := EstimateTokens(c.Body)
		if used+tokens > budget {
			remainingBudget := budget - used
			if remainingBudget <= 0 {
				break
			}
			truncated := TruncateToFit(c.Body, remainingBudget)
			tTokens := EstimateTokens(truncated)
			if tTokens == 0 {
				break
			}
			res.Sections = append(res.Sections, Section{Tier: TierCore, NodeID: c.NodeID, Text: truncated, Tokens: tTokens})
			res.TierTokens[TierCore] += tTokens
			used += tTokens
			break
		}
		res.Sections = append(res.Sections, Section{Tier: TierCore, NodeID: c.NodeID, Text: c.Body, Tokens: tokens})
		res.TierTokens[TierCore] += tokens
		used += tokens
	}
	return used
}

func fillNear(res *Result, items []CallerCallee, budget int) int {
	used := 0
	for _, it := range items {
		tokens := EstimateTokens(it.Signature)
		if used+tokens > budget {
			break
		}
		res.Sections = append(res.Sections, Section{Tier: TierNear, NodeID: it.NodeID, Text: it.Signature, Tokens: tokens})
		res.TierTokens[TierNear] += tokens
		used += tokens
	}
	return used
}

func fillExtended(res *Result, items []ExtendedItem, budget int) int {
	used := 0
	for _, it := range items {
		tokens := EstimateTokens(it.Text)
		if used+tokens > budget {
			break
		}
		res.Sections = append(res.Sections, Section{Tier: TierExtended, NodeID: it.NodeID, Text: it.Text, Tokens: tokens})
		res.TierTokens[TierExtended] += tokens
		used += tokens
	}
	return used
}

func fillBackground(res *Result, listing string, budget int) int {
	if listing == "" || budget <= 0 {
		return 0
	}
	text := TruncateToFit(listing, budget)
	tokens := EstimateTokens(text)
	if tokens == 0 {
		return 0
	}
	res.Sections = append(res.Sections, Section{Tier: TierBackground, Text: text, Tokens: tokens})
	res.TierTokens[TierBackground] += tokens
	return tokens
}

// trimBackground drops or shrinks the Background section(s) until the
// total fits budget, the last resort when rounding/truncation left the
// assembled result slightly over ("Background may
// be trimmed first").
func trimBackground(res *Result, budget int) {
	over := res.TotalTokens - budget
	if over <= 0 {
		return
	}

	kept := make([]Section, 0, len(res.Sections))
	for _, s := range res.Sections {
		if s.Tier != TierBackground || over <= 0 {
			kept = append(kept, s)
			continue
		}
		if s.Tokens <= over {
			over -= s.Tokens
			res.TotalTokens -= s.Tokens
			res.TierTokens[TierBackground] -= s.Tokens
			continue
		}
		oldTokens := s.Tokens
		s.Text = TruncateToFit(s.Text, oldTokens-over)
		s.Tokens = EstimateTokens(s.Text)
		delta := oldTokens - s.Tokens
		res.TotalTokens -= delta
		res.TierTokens[TierBackground] -= delta
		over = 0
		kept = append(kept, s)
	}
	res.Sections = kept
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
