package iptables

import (
	"fmt"
	"strings"
)

// Rule is a single -A line: match parameters, an optional target and the
// target's parameters.
type Rule struct {
	Match        Params
	Target       string // empty when the rule has no -j
	TargetParams Params
}

// NewRule builds a rule. target may be empty.
func NewRule(match Params, target string, targetParams Params) Rule {
	return Rule{Match: match, Target: target, TargetParams: targetParams}
}

func (r Rule) HasTarget() bool { return r.Target != "" }

// Tokens renders the rule body as it appears after "-A <chain>".
func (r Rule) Tokens() []string {
	tokens := r.Match.Tokens()
	if r.HasTarget() {
		tokens = append(tokens, "-j", r.Target)
		tokens = append(tokens, r.TargetParams.Tokens()...)
	}
	return tokens
}

// String returns the rule body, e.g. "-s 10.0.0.0/8 -j DROP".
func (r Rule) String() string {
	return strings.Join(r.Tokens(), " ")
}

func (r Rule) GoString() string {
	var b strings.Builder
	b.WriteString("<Rule")
	if r.Match.Len() > 0 {
		fmt.Fprintf(&b, " Match: %v", r.Match.Items())
	}
	if r.HasTarget() {
		fmt.Fprintf(&b, " Action: %s", r.Target)
	}
	if r.TargetParams.Len() > 0 {
		fmt.Fprintf(&b, " %v", r.TargetParams.Items())
	}
	b.WriteString(">")
	return b.String()
}

// Equal compares two rules including parameter order.
func (r Rule) Equal(o Rule) bool {
	return r.Target == o.Target && r.Match.Equal(o.Match) && r.TargetParams.Equal(o.TargetParams)
}

// Clone returns a rule that shares no state with r.
func (r Rule) Clone() Rule {
	return Rule{Match: r.Match.Clone(), Target: r.Target, TargetParams: r.TargetParams.Clone()}
}
