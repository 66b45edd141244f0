package iptables

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/fwtranslate/internal/logging"
)

func quietParser(opts ...ParseOption) *Parser {
	return NewParser(append([]ParseOption{WithLogger(logging.Discard())}, opts...)...)
}

func mustParse(t *testing.T, text string, opts ...ParseOption) *RuleSet {
	t.Helper()
	rs, err := quietParser(opts...).Parse(text)
	require.NoError(t, err)
	return rs
}

func TestParse_Basic(t *testing.T) {
	rs := mustParse(t, "*filter\n:INPUT ACCEPT [0:0]\n-A INPUT -s 10.0.0.0/8 -j DROP\nCOMMIT\n")

	input, ok := rs.Table(TableFilter).Chain("INPUT")
	require.True(t, ok)
	require.Equal(t, 1, input.Len())

	r, _ := input.Rule(0)
	assert.Equal(t, []Param{{Flag: "-s", Value: "10.0.0.0/8"}}, r.Match.Items())
	assert.Equal(t, "DROP", r.Target)
	assert.Equal(t, 0, r.TargetParams.Len())

	// Everything else stays as seeded.
	assert.Equal(t, 1, rs.RuleCount())
	assert.Equal(t, []string{"FORWARD", "INPUT", "OUTPUT"}, rs.Table(TableFilter).ChainNames())
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "# Generated by iptables-save\n"} {
		rs := mustParse(t, text)
		assert.True(t, rs.Equal(NewRuleSet()), "%q", text)
	}
}

func TestParse_Rules(t *testing.T) {
	tests := []struct {
		name         string
		table        string
		line         string
		chain        string
		match        []Param
		target       string
		targetParams []Param
	}{
		{
			name:   "multiple matches",
			table:  "filter",
			line:   "-A INPUT -p tcp -m tcp --dport 22 -j ACCEPT",
			chain:  "INPUT",
			match:  []Param{{"-p", "tcp"}, {"-m", "tcp"}, {"--dport", "22"}},
			target: "ACCEPT",
		},
		{
			name:         "target parameters",
			table:        "nat",
			line:         "-A POSTROUTING -o eth0 -j SNAT --to-source 192.0.2.1",
			chain:        "POSTROUTING",
			match:        []Param{{"-o", "eth0"}},
			target:       "SNAT",
			targetParams: []Param{{"--to-source", "192.0.2.1"}},
		},
		{
			name:   "no target",
			table:  "filter",
			line:   "-A FORWARD -i eth1 -o eth0",
			chain:  "FORWARD",
			match:  []Param{{"-i", "eth1"}, {"-o", "eth0"}},
			target: "",
		},
		{
			name:   "target only",
			table:  "mangle",
			line:   "-A PREROUTING -j RETURN",
			chain:  "PREROUTING",
			target: "RETURN",
		},
		{
			name:   "bare rule",
			table:  "filter",
			line:   "-A OUTPUT",
			chain:  "OUTPUT",
			target: "",
		},
		{
			name:   "-j inside a value",
			table:  "filter",
			line:   "-A INPUT -i br-jail -j DROP",
			chain:  "INPUT",
			match:  []Param{{"-i", "br-jail"}},
			target: "DROP",
		},
		{
			name:   "surrounding whitespace",
			table:  "filter",
			line:   "   -A INPUT -s 1.2.3.4 -j DROP\t",
			chain:  "INPUT",
			match:  []Param{{"-s", "1.2.3.4"}},
			target: "DROP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustParse(t, "*"+tt.table+"\n"+tt.line+"\nCOMMIT\n")

			name, err := ParseTableName(tt.table)
			require.NoError(t, err)
			chain, ok := rs.Table(name).Chain(tt.chain)
			require.True(t, ok)
			require.Equal(t, 1, chain.Len())

			r, _ := chain.Rule(0)
			assert.Equal(t, tt.match, r.Match.Items())
			assert.Equal(t, tt.target, r.Target)
			assert.Equal(t, tt.targetParams, r.TargetParams.Items())
		})
	}
}

// Tokens are paired positionally, so iptables-save lines carrying negation
// or value-less flags lose information. These tests pin that behavior.
func TestParse_PositionalPairing(t *testing.T) {
	t.Run("odd trailing token dropped", func(t *testing.T) {
		p := quietParser()
		rs, err := p.Parse("*filter\n-A INPUT -p tcp --syn -j ACCEPT\nCOMMIT\n")
		require.NoError(t, err)

		input, _ := rs.Table(TableFilter).Chain("INPUT")
		r, _ := input.Rule(0)
		assert.Equal(t, []Param{{"-p", "tcp"}}, r.Match.Items())
		assert.Equal(t, "ACCEPT", r.Target)
		assert.Equal(t, 1, p.Stats().DroppedTokens)
	})

	t.Run("negation shifts pairs", func(t *testing.T) {
		rs := mustParse(t, "*filter\n-A INPUT ! -s 10.0.0.0/8 -j DROP\nCOMMIT\n")

		input, _ := rs.Table(TableFilter).Chain("INPUT")
		r, _ := input.Rule(0)
		assert.Equal(t, []Param{{"!", "-s"}}, r.Match.Items())
	})

	t.Run("repeated flag keeps first position and last value", func(t *testing.T) {
		rs := mustParse(t, "*filter\n-A INPUT -m tcp -p tcp -m comment --comment ssh -j ACCEPT\nCOMMIT\n")

		input, _ := rs.Table(TableFilter).Chain("INPUT")
		r, _ := input.Rule(0)
		assert.Equal(t, []Param{{"-m", "comment"}, {"-p", "tcp"}, {"--comment", "ssh"}}, r.Match.Items())
	})
}

func TestParse_Chains(t *testing.T) {
	rs := mustParse(t, `*filter
:INPUT DROP [120:9000]
:FORWARD ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
:LOGDROP - [0:0]
-A INPUT -j LOGDROP
-A LOGDROP -j DROP
COMMIT
`)

	filter := rs.Table(TableFilter)
	assert.Equal(t, []string{"FORWARD", "INPUT", "OUTPUT", "LOGDROP"}, filter.ChainNames())

	input, _ := filter.Chain("INPUT")
	assert.Equal(t, PolicyDrop, input.Policy())

	logdrop, ok := filter.Chain("LOGDROP")
	require.True(t, ok)
	assert.Equal(t, PolicyNone, logdrop.Policy())
	assert.Equal(t, 1, logdrop.Len())
}

func TestParse_RedeclaredChainTakesLatestPolicy(t *testing.T) {
	rs := mustParse(t, `*filter
:INPUT DROP [0:0]
-A INPUT -i lo -j ACCEPT
COMMIT
*filter
:INPUT ACCEPT [0:0]
-A INPUT -j DROP
COMMIT
`)

	filter := rs.Table(TableFilter)
	// Seeded position is kept, rules accumulate, the last policy wins.
	assert.Equal(t, []string{"FORWARD", "INPUT", "OUTPUT"}, filter.ChainNames())
	input, _ := filter.Chain("INPUT")
	assert.Equal(t, PolicyAccept, input.Policy())
	assert.Equal(t, []string{"ACCEPT", "DROP"}, targets(input))
}

func TestParse_PresentTables(t *testing.T) {
	rs := mustParse(t, `*nat
-A POSTROUTING -o eth0 -j MASQUERADE
COMMIT
`)
	assert.True(t, rs.Present(TableNAT))
	assert.False(t, rs.Present(TableFilter))
	assert.False(t, rs.Present(TableMangle))

	// Seeded chains of absent tables are still there.
	assert.Equal(t, 3, rs.Table(TableFilter).Len())

	require.NoError(t, rs.Read("*filter\nCOMMIT\n", WithLogger(logging.Discard())))
	assert.True(t, rs.Present(TableFilter))
	assert.True(t, rs.Present(TableNAT))

	err := rs.Read("*mangle\n-A MISSING -j DROP\nCOMMIT\n", WithLogger(logging.Discard()))
	require.ErrorIs(t, err, ErrUnknownChain)
	assert.False(t, rs.Present(TableMangle), "a failed read must not mark tables")
}

func TestParse_UnknownPolicy(t *testing.T) {
	const text = "*filter\n:INPUT BOGUS [0:0]\nCOMMIT\n"

	rs := mustParse(t, text)
	input, _ := rs.Table(TableFilter).Chain("INPUT")
	assert.Equal(t, Policy("BOGUS"), input.Policy())

	_, err := quietParser(WithStrict(true)).Parse(text)
	require.ErrorIs(t, err, ErrMalformedLine)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, err.Error(), "BOGUS")

	mustParse(t, "*filter\n:INPUT DROP [0:0]\n:CUSTOM - [0:0]\n:OUTPUT RETURN [0:0]\nCOMMIT\n", WithStrict(true))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		err  error
	}{
		{"unknown table", "*raw\nCOMMIT\n", 1, ErrUnknownTable},
		{"empty table name", "*\n", 1, ErrUnknownTable},
		{"chain without table", ":INPUT ACCEPT [0:0]\n", 1, ErrNoActiveTable},
		{"rule without table", "-A INPUT -j DROP\n", 1, ErrNoActiveTable},
		{"rule after commit", "*filter\nCOMMIT\n-A INPUT -j DROP\n", 3, ErrNoActiveTable},
		{"unknown chain", "*filter\n-A CUSTOM -j DROP\nCOMMIT\n", 2, ErrUnknownChain},
		{"chain in other table", "*nat\n-A FORWARD -j DROP\nCOMMIT\n", 2, ErrUnknownChain},
		{"insert", "*filter\n-I INPUT 1 -j DROP\nCOMMIT\n", 2, ErrUnsupportedOperation},
		{"delete", "*filter\n-D INPUT -j DROP\nCOMMIT\n", 2, ErrUnsupportedOperation},
		{"new chain command", "*filter\n-N CUSTOM\nCOMMIT\n", 2, ErrUnsupportedOperation},
		{"chain missing counters", "*filter\n:INPUT ACCEPT\nCOMMIT\n", 2, ErrMalformedLine},
		{"chain bad counters", "*filter\n:INPUT ACCEPT [a:b]\nCOMMIT\n", 2, ErrMalformedLine},
		{"chain extra field", "*filter\n:INPUT ACCEPT [0:0] x\nCOMMIT\n", 2, ErrMalformedLine},
		{"chain double space", "*filter\n:INPUT  ACCEPT [0:0]\nCOMMIT\n", 2, ErrMalformedLine},
		{"append without chain", "*filter\n-A\nCOMMIT\n", 2, ErrMalformedLine},
		{"missing target", "*filter\n-A INPUT -s 1.2.3.4 -j\nCOMMIT\n", 2, ErrMalformedLine},
		{"garbage", "*filter\nhello world\nCOMMIT\n", 2, ErrMalformedLine},
		{"lowercase commit", "*filter\ncommit\n", 2, ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietParser().Parse(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.NotEmpty(t, perr.Expected)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := quietParser().Parse("*filter\n-A CUSTOM -j DROP\n")
	require.Error(t, err)
	assert.Equal(t,
		`line 2: unknown chain: CUSTOM in table filter: "-A CUSTOM -j DROP" (expected :<chain> <POLICY> [<packets>:<bytes>])`,
		err.Error())
}

func TestParse_Forgiving(t *testing.T) {
	// No COMMIT anywhere, a stray COMMIT and a table switch: all accepted.
	rs := mustParse(t, "COMMIT\n*filter\n-A INPUT -j DROP\n*nat\n-A OUTPUT -j ACCEPT\n")
	assert.Equal(t, 2, rs.RuleCount())

	nat, _ := rs.Table(TableNAT).Chain("OUTPUT")
	assert.Equal(t, 1, nat.Len())
}

func TestParse_Strict(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		line int
	}{
		{"missing final commit", "*filter\n-A INPUT -j DROP\n", ErrMissingCommit, 2},
		{"table switch", "*filter\n*nat\nCOMMIT\n", ErrMissingCommit, 2},
		{"stray commit", "COMMIT\n", ErrNoActiveTable, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietParser(WithStrict(true)).Parse(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
		})
	}

	rs := mustParse(t, "*filter\n-A INPUT -j DROP\nCOMMIT\n*nat\nCOMMIT\n", WithStrict(true))
	assert.Equal(t, 1, rs.RuleCount())
}

func TestParse_Stats(t *testing.T) {
	p := quietParser()
	_, err := p.Parse(`# Generated by iptables-save
*filter
:INPUT ACCEPT [0:0]
:CUSTOM - [0:0]

-A INPUT -j CUSTOM
-A CUSTOM -p tcp --syn
COMMIT
# Completed
`)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Lines:         9,
		Blank:         1,
		Comments:      2,
		Tables:        1,
		Chains:        2,
		Rules:         2,
		DroppedTokens: 1,
	}, p.Stats())
}

func TestRuleSet_Read(t *testing.T) {
	rs := NewRuleSet()
	require.NoError(t, rs.Read("*filter\n-A INPUT -j ACCEPT\nCOMMIT\n", WithLogger(logging.Discard())))
	require.NoError(t, rs.Read("*filter\n-A INPUT -j DROP\nCOMMIT\n", WithLogger(logging.Discard())))

	// Reads append to what is already there.
	input, _ := rs.Table(TableFilter).Chain("INPUT")
	assert.Equal(t, []string{"ACCEPT", "DROP"}, targets(input))
}

func TestRuleSet_ReadIsAtomic(t *testing.T) {
	rs := NewRuleSet()
	require.NoError(t, rs.Read("*filter\n-A INPUT -j ACCEPT\nCOMMIT\n", WithLogger(logging.Discard())))
	before := rs.Clone()

	err := rs.Read(`*filter
:INPUT DROP [0:0]
:NEW - [0:0]
-A INPUT -s 10.0.0.0/8 -j DROP
-A MISSING -j DROP
COMMIT
`, WithLogger(logging.Discard()))
	require.ErrorIs(t, err, ErrUnknownChain)

	assert.True(t, rs.Equal(before), "a failed read must not change the rule set")
	_, ok := rs.Table(TableFilter).Chain("NEW")
	assert.False(t, ok)
}

func TestParse_LongLine(t *testing.T) {
	long := make([]byte, 0, 200*1024)
	long = append(long, "-A INPUT -m comment --comment "...)
	for len(long) < 150*1024 {
		long = append(long, 'x')
	}
	long = append(long, " -j ACCEPT"...)

	rs := mustParse(t, "*filter\n"+string(long)+"\nCOMMIT\n")
	assert.Equal(t, 1, rs.RuleCount())
}
