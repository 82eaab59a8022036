package index

import "github.com/eyereasoner/eyego/internal/term"

// RuleSet holds the live forward and backward rules of a run, indexed by
// head predicate for backward rules. Both lists are append-only during
// chaining: forward chaining may install new rules derived from
// log:implies/log:impliedBy triples.
type RuleSet struct {
	Forward  []*term.Rule
	Backward []*term.Rule

	byHeadPredicate map[string][]*term.Rule
	installed       map[string]bool
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{byHeadPredicate: make(map[string][]*term.Rule), installed: make(map[string]bool)}
}

// AddForward appends a forward rule.
func (rs *RuleSet) AddForward(r *term.Rule) {
	rs.Forward = append(rs.Forward, r)
}

// AddBackward appends a backward rule and indexes it by the predicate of
// its first head triple. The prover matches a goal against that first
// head triple only; further head triples of the conclusion are not
// tried.
func (rs *RuleSet) AddBackward(r *term.Rule) {
	rs.Backward = append(rs.Backward, r)
	if len(r.Conclusion) > 0 {
		key := r.Conclusion[0].Predicate.DedupKey()
		rs.byHeadPredicate[key] = append(rs.byHeadPredicate[key], r)
	}
}

// BackwardRulesFor returns backward rules whose head predicate matches
// predKey.
func (rs *RuleSet) BackwardRulesFor(predKey string) []*term.Rule {
	return rs.byHeadPredicate[predKey]
}

// dedupKey computes the structural-equality key used to coalesce
// dynamically installed rules: duplicates by triple-list equality of
// premise and conclusion are coalesced.
func dedupKey(premise, conclusion []term.Triple) string {
	k := ""
	for _, t := range premise {
		k += t.Key() + "|"
	}
	k += "=>"
	for _, t := range conclusion {
		k += t.Key() + "|"
	}
	return k
}

// TryInstall installs r (forward or backward) if a structurally equal
// rule has not already been installed. Returns true if newly installed.
func (rs *RuleSet) TryInstall(r *term.Rule) bool {
	key := dedupKey(r.Premise, r.Conclusion)
	if rs.installed[key] {
		return false
	}
	rs.installed[key] = true
	if r.Direction == term.Forward {
		rs.AddForward(r)
	} else {
		rs.AddBackward(r)
	}
	return true
}
