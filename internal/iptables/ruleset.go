package iptables

// RuleSet is the full set of tables. The table keys are fixed: a RuleSet
// always has exactly filter, mangle and nat.
//
// A RuleSet also remembers which tables its input actually named. Parsing
// marks every "*table" header it reads; the seeded tables of NewRuleSet are
// not present until something marks them.
//
// A RuleSet is a plain mutable value with no internal locking. Callers
// sharing one across goroutines must serialize access themselves.
type RuleSet struct {
	tables  [numTables]*Table
	present [numTables]bool
}

// NewRuleSet returns a freshly seeded rule set: every table with its
// built-in chains, each with an ACCEPT policy.
func NewRuleSet() *RuleSet {
	rs := &RuleSet{}
	for _, name := range TableNames() {
		t := NewTable(name)
		for _, chain := range builtinChains[name] {
			t.add(&Chain{name: chain, policy: PolicyAccept})
		}
		rs.tables[name] = t
	}
	return rs
}

// NewRuleSetFrom builds a rule set from caller-supplied tables. Tables not
// supplied start empty, without built-in chains, and are not present. A
// later table with the same name replaces an earlier one.
func NewRuleSetFrom(tables ...*Table) *RuleSet {
	rs := &RuleSet{}
	for _, name := range TableNames() {
		rs.tables[name] = NewTable(name)
	}
	for _, t := range tables {
		if t != nil && t.name.Valid() {
			rs.tables[t.name] = t
			rs.present[t.name] = true
		}
	}
	return rs
}

// Table returns the named table, or nil for an invalid name.
func (rs *RuleSet) Table(name TableName) *Table {
	if !name.Valid() {
		return nil
	}
	return rs.tables[name]
}

// Tables returns the tables in canonical order.
func (rs *RuleSet) Tables() []*Table {
	return []*Table{rs.tables[TableFilter], rs.tables[TableMangle], rs.tables[TableNAT]}
}

// Present reports whether the table was named by parsed input, supplied
// to NewRuleSetFrom or marked with MarkPresent.
func (rs *RuleSet) Present(name TableName) bool {
	return name.Valid() && rs.present[name]
}

// MarkPresent flags a table as part of the rule set's input, for rule sets
// assembled by hand on top of NewRuleSet.
func (rs *RuleSet) MarkPresent(name TableName) {
	if name.Valid() {
		rs.present[name] = true
	}
}

// PresentTables returns the present tables in canonical order.
func (rs *RuleSet) PresentTables() []*Table {
	var out []*Table
	for _, name := range TableNames() {
		if rs.present[name] {
			out = append(out, rs.tables[name])
		}
	}
	return out
}

// ForEach calls fn for every table in canonical order.
func (rs *RuleSet) ForEach(fn func(t *Table)) {
	for _, t := range rs.Tables() {
		fn(t)
	}
}

// RuleCount returns the number of rules across all chains.
func (rs *RuleSet) RuleCount() int {
	n := 0
	rs.ForEach(func(t *Table) {
		t.ForEach(func(c *Chain) {
			n += c.Len()
		})
	})
	return n
}

// Clone returns a deep copy.
func (rs *RuleSet) Clone() *RuleSet {
	out := &RuleSet{present: rs.present}
	for i, t := range rs.tables {
		out.tables[i] = t.clone()
	}
	return out
}

// Equal compares tables, chain order, policies and rules. Presence is not
// compared: serialization always writes every table.
func (rs *RuleSet) Equal(o *RuleSet) bool {
	if o == nil {
		return false
	}
	for i := range rs.tables {
		if !rs.tables[i].equal(o.tables[i]) {
			return false
		}
	}
	return true
}
