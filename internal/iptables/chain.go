package iptables

import "fmt"

// Policy is a chain's default target.
type Policy string

const (
	PolicyAccept Policy = "ACCEPT"
	PolicyDrop   Policy = "DROP"
	PolicyReturn Policy = "RETURN"
	// PolicyNone marks a user-defined chain, which has no policy.
	PolicyNone Policy = "-"
)

// BuiltIn reports whether the policy belongs to a built-in chain.
func (p Policy) BuiltIn() bool {
	return p != PolicyNone
}

// Valid reports whether the policy is one iptables-save can emit.
func (p Policy) Valid() bool {
	switch p {
	case PolicyAccept, PolicyDrop, PolicyReturn, PolicyNone:
		return true
	}
	return false
}

func (p Policy) String() string { return string(p) }

// Chain is an ordered list of rules. Order matters: the first matching
// rule wins.
type Chain struct {
	name   string
	policy Policy
	rules  []Rule
}

// NewChain creates a detached chain. Use Table.NewChain to add one to a
// table.
func NewChain(name string, policy Policy, rules ...Rule) *Chain {
	c := &Chain{name: name, policy: policy}
	for _, r := range rules {
		c.Append(r)
	}
	return c
}

func (c *Chain) Name() string   { return c.name }
func (c *Chain) Policy() Policy { return c.policy }

// SetPolicy replaces the chain's default target.
func (c *Chain) SetPolicy(p Policy) { c.policy = p }

func (c *Chain) Len() int { return len(c.rules) }

// Append adds a rule at the end of the chain.
func (c *Chain) Append(r Rule) {
	c.rules = append(c.rules, r.Clone())
}

// Insert adds a rule at pos. Positions past either end are clamped.
func (c *Chain) Insert(pos int, r Rule) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.rules) {
		pos = len(c.rules)
	}
	c.rules = append(c.rules, Rule{})
	copy(c.rules[pos+1:], c.rules[pos:])
	c.rules[pos] = r.Clone()
}

// Prepend inserts a rule at the front of the chain.
func (c *Chain) Prepend(r Rule) {
	c.Insert(0, r)
}

// Delete removes the first rule equal to r.
func (c *Chain) Delete(r Rule) error {
	for i := range c.rules {
		if c.rules[i].Equal(r) {
			c.rules = append(c.rules[:i], c.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w in chain %s: %s", ErrRuleNotFound, c.name, r)
}

// Clear removes every rule.
func (c *Chain) Clear() {
	c.rules = nil
}

// Rule returns the rule at index i.
func (c *Chain) Rule(i int) (Rule, bool) {
	if i < 0 || i >= len(c.rules) {
		return Rule{}, false
	}
	return c.rules[i].Clone(), true
}

// Rules returns a copy of the rules in order.
func (c *Chain) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Clone()
	}
	return out
}

// ForEach calls fn for every rule in order. fn gets a copy, so changing
// it leaves the chain alone.
func (c *Chain) ForEach(fn func(i int, r Rule)) {
	for i, r := range c.rules {
		fn(i, r.Clone())
	}
}

func (c *Chain) clone() *Chain {
	return &Chain{name: c.name, policy: c.policy, rules: c.Rules()}
}

func (c *Chain) equal(o *Chain) bool {
	if c.name != o.name || c.policy != o.policy || len(c.rules) != len(o.rules) {
		return false
	}
	for i := range c.rules {
		if !c.rules[i].Equal(o.rules[i]) {
			return false
		}
	}
	return true
}
