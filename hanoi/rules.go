package hanoi

import "fmt"

// Rule names the validation layer that rejected a move.
type Rule string

const (
	RulePegBounds      Rule = "peg_bounds"
	RuleSourceNotEmpty Rule = "source_not_empty"
	RuleTopmostDisk    Rule = "topmost_disk"
	RuleSizeOrdering   Rule = "size_ordering"
)

// ruleCheck returns a non-empty reason when the move breaks the rule.
type ruleCheck struct {
	rule  Rule
	check func(p Pegs, m Move) string
}

// layers run in order; the first failure wins and later layers are skipped.
var layers = []ruleCheck{
	{RulePegBounds, checkPegBounds},
	{RuleSourceNotEmpty, checkSourceNotEmpty},
	{RuleTopmostDisk, checkTopmostDisk},
	{RuleSizeOrdering, checkSizeOrdering},
}

func validPeg(i int) bool { return i >= 0 && i < PegCount }

func checkPegBounds(_ Pegs, m Move) string {
	if validPeg(m.From) && validPeg(m.To) {
		return ""
	}
	return fmt.Sprintf("Invalid peg indices: from_peg=%d, to_peg=%d", m.From, m.To)
}

func checkSourceNotEmpty(p Pegs, m Move) string {
	if len(p[m.From]) > 0 {
		return ""
	}
	return fmt.Sprintf("Source peg %d is empty", m.From)
}

func checkTopmostDisk(p Pegs, m Move) string {
	top, _ := p.Top(m.From)
	if top == m.Disk {
		return ""
	}
	return fmt.Sprintf("Disk %d is not on top of peg %d. Top disk is %d", m.Disk, m.From, top)
}

// checkSizeOrdering requires the destination top to be strictly larger, so a
// disk can never be dropped back onto itself.
func checkSizeOrdering(p Pegs, m Move) string {
	target, ok := p.Top(m.To)
	switch {
	case !ok || target > m.Disk:
		return ""
	case target == m.Disk:
		return fmt.Sprintf("Disk %d is already on peg %d", m.Disk, m.To)
	}
	return fmt.Sprintf("Cannot place larger disk %d on smaller disk %d", m.Disk, target)
}

// Check runs every layer against p and reports the first rule broken along
// with its reason. An empty Rule means the move is legal.
func Check(p Pegs, m Move) (Rule, string) {
	for _, layer := range layers {
		if reason := layer.check(p, m); reason != "" {
			return layer.rule, reason
		}
	}
	return "", ""
}
