package iptables

import "strings"

// Param is a single flag/value pair.
type Param struct {
	Flag  string
	Value string
}

// Params is an insertion-ordered flag → value mapping. Setting an existing
// flag replaces its value in place, so a repeated flag keeps its first
// position and its last value.
type Params struct {
	items []Param
}

// NewParams pairs up flag, value, flag, value... A trailing flag without a
// value is dropped.
func NewParams(tokens ...string) Params {
	var p Params
	for i := 0; i+1 < len(tokens); i += 2 {
		p.Set(tokens[i], tokens[i+1])
	}
	return p
}

// Set assigns value to flag.
func (p *Params) Set(flag, value string) {
	for i := range p.items {
		if p.items[i].Flag == flag {
			p.items[i].Value = value
			return
		}
	}
	p.items = append(p.items, Param{Flag: flag, Value: value})
}

// Get returns the value of flag.
func (p Params) Get(flag string) (string, bool) {
	for _, it := range p.items {
		if it.Flag == flag {
			return it.Value, true
		}
	}
	return "", false
}

// Has reports whether flag is set.
func (p Params) Has(flag string) bool {
	_, ok := p.Get(flag)
	return ok
}

func (p Params) Len() int { return len(p.items) }

// Flags returns the flags in order.
func (p Params) Flags() []string {
	flags := make([]string, len(p.items))
	for i, it := range p.items {
		flags[i] = it.Flag
	}
	return flags
}

// Items returns a copy of the pairs in order.
func (p Params) Items() []Param {
	if len(p.items) == 0 {
		return nil
	}
	out := make([]Param, len(p.items))
	copy(out, p.items)
	return out
}

// ForEach calls fn for every pair in order.
func (p Params) ForEach(fn func(flag, value string)) {
	for _, it := range p.items {
		fn(it.Flag, it.Value)
	}
}

// Tokens renders the pairs as alternating flag and value tokens.
func (p Params) Tokens() []string {
	tokens := make([]string, 0, 2*len(p.items))
	for _, it := range p.items {
		tokens = append(tokens, it.Flag, it.Value)
	}
	return tokens
}

// Map returns the pairs as an unordered map.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p.items))
	for _, it := range p.items {
		m[it.Flag] = it.Value
	}
	return m
}

// Equal compares flags, values and order.
func (p Params) Equal(o Params) bool {
	if len(p.items) != len(o.items) {
		return false
	}
	for i := range p.items {
		if p.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	return Params{items: p.Items()}
}

func (p Params) String() string {
	return strings.Join(p.Tokens(), " ")
}
