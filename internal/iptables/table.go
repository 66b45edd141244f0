package iptables

import "fmt"

// TableName is one of the tables this backend supports. The set is closed.
type TableName uint8

const (
	TableFilter TableName = iota
	TableMangle
	TableNAT

	numTables
)

var tableNames = [numTables]string{
	TableFilter: "filter",
	TableMangle: "mangle",
	TableNAT:    "nat",
}

// builtinChains lists each table's mandatory chains in seeding order.
var builtinChains = [numTables][]string{
	TableFilter: {"FORWARD", "INPUT", "OUTPUT"},
	TableMangle: {"FORWARD", "INPUT", "OUTPUT", "POSTROUTING", "PREROUTING"},
	TableNAT:    {"INPUT", "OUTPUT", "POSTROUTING", "PREROUTING"},
}

// TableNames returns the tables in canonical order.
func TableNames() []TableName {
	return []TableName{TableFilter, TableMangle, TableNAT}
}

// ParseTableName resolves a table name as written after "*".
func ParseTableName(s string) (TableName, error) {
	for i, name := range tableNames {
		if name == s {
			return TableName(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownTable, s)
}

func (t TableName) Valid() bool { return t < numTables }

func (t TableName) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TableName(%d)", uint8(t))
	}
	return tableNames[t]
}

// BuiltinChains returns the chains every instance of the table starts with.
func (t TableName) BuiltinChains() []string {
	if !t.Valid() {
		return nil
	}
	return append([]string(nil), builtinChains[t]...)
}

// Table groups chains under a processing stage. Chains keep their
// insertion order.
type Table struct {
	name   TableName
	chains map[string]*Chain
	order  []string
}

// NewTable creates a table holding the given chains. Use NewRuleSet for the
// seeded layout.
func NewTable(name TableName, chains ...*Chain) *Table {
	t := &Table{name: name, chains: make(map[string]*Chain)}
	for _, c := range chains {
		t.add(c)
	}
	return t
}

func (t *Table) Name() TableName { return t.name }
func (t *Table) Len() int        { return len(t.order) }

// NewChain creates an empty chain. It fails if the name is taken.
func (t *Table) NewChain(name string, policy Policy) (*Chain, error) {
	if name == "" {
		return nil, ErrEmptyChainName
	}
	if _, ok := t.chains[name]; ok {
		return nil, fmt.Errorf("%w: %s in table %s", ErrDuplicateChain, name, t.name)
	}
	c := &Chain{name: name, policy: policy}
	t.add(c)
	return c, nil
}

// DeleteChain removes a chain and its rules.
func (t *Table) DeleteChain(name string) error {
	if _, ok := t.chains[name]; !ok {
		return fmt.Errorf("%w: %s in table %s", ErrUnknownChain, name, t.name)
	}
	delete(t.chains, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Chain looks up a chain by name.
func (t *Table) Chain(name string) (*Chain, bool) {
	c, ok := t.chains[name]
	return c, ok
}

// Chains returns the chains in insertion order.
func (t *Table) Chains() []*Chain {
	out := make([]*Chain, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.chains[n])
	}
	return out
}

// ChainNames returns the chain names in insertion order.
func (t *Table) ChainNames() []string {
	return append([]string(nil), t.order...)
}

// ForEach calls fn for every chain in insertion order.
func (t *Table) ForEach(fn func(c *Chain)) {
	for _, n := range t.order {
		fn(t.chains[n])
	}
}

func (t *Table) add(c *Chain) {
	if _, ok := t.chains[c.name]; !ok {
		t.order = append(t.order, c.name)
	}
	t.chains[c.name] = c
}

func (t *Table) clone() *Table {
	out := &Table{name: t.name, chains: make(map[string]*Chain, len(t.chains))}
	t.ForEach(func(c *Chain) {
		out.add(c.clone())
	})
	return out
}

func (t *Table) equal(o *Table) bool {
	if t.name != o.name || len(t.order) != len(o.order) {
		return false
	}
	for i, n := range t.order {
		if o.order[i] != n || !t.chains[n].equal(o.chains[n]) {
			return false
		}
	}
	return true
}
