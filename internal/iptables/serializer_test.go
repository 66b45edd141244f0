package iptables

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seededDump = `*filter
:FORWARD ACCEPT [0:0]
:INPUT ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
COMMIT
*mangle
:FORWARD ACCEPT [0:0]
:INPUT ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
:POSTROUTING ACCEPT [0:0]
:PREROUTING ACCEPT [0:0]
COMMIT
*nat
:INPUT ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
:POSTROUTING ACCEPT [0:0]
:PREROUTING ACCEPT [0:0]
COMMIT
`

func TestSerialize_Seeded(t *testing.T) {
	assert.Equal(t, seededDump, Serialize(NewRuleSet()))
}

func TestSerialize_Basic(t *testing.T) {
	rs := mustParse(t, "*filter\n:INPUT ACCEPT [0:0]\n-A INPUT -s 10.0.0.0/8 -j DROP\nCOMMIT\n")

	expected := `*filter
:FORWARD ACCEPT [0:0]
:INPUT ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
-A INPUT -s 10.0.0.0/8 -j DROP
COMMIT
*mangle
:FORWARD ACCEPT [0:0]
:INPUT ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
:POSTROUTING ACCEPT [0:0]
:PREROUTING ACCEPT [0:0]
COMMIT
*nat
:INPUT ACCEPT [0:0]
:OUTPUT ACCEPT [0:0]
:POSTROUTING ACCEPT [0:0]
:PREROUTING ACCEPT [0:0]
COMMIT
`
	assert.Equal(t, expected, Serialize(rs))
	assert.Equal(t, expected, rs.String())
}

func TestSerialize_DeclarationsBeforeRules(t *testing.T) {
	rs := NewRuleSetFrom(NewTable(TableFilter,
		NewChain("INPUT", PolicyDrop, NewRule(Params{}, "CUSTOM", Params{})),
		NewChain("CUSTOM", PolicyNone, NewRule(NewParams("-p", "icmp"), TargetAccept, Params{})),
	))

	expected := `*filter
:INPUT DROP [0:0]
:CUSTOM - [0:0]
-A INPUT -j CUSTOM
-A CUSTOM -p icmp -j ACCEPT
COMMIT
*mangle
COMMIT
*nat
COMMIT
`
	assert.Equal(t, expected, Serialize(rs))
}

func TestSerialize_RuleOrder(t *testing.T) {
	rs := NewRuleSet()
	input, _ := rs.Table(TableFilter).Chain("INPUT")
	input.Append(NewRule(NewParams("-s", "10.0.0.0/8"), TargetDrop, Params{}))
	input.Append(NewRule(NewParams("-s", "10.0.0.0/8"), TargetAccept, Params{}))

	out := Serialize(rs)
	drop := bytes.Index([]byte(out), []byte("-A INPUT -s 10.0.0.0/8 -j DROP"))
	accept := bytes.Index([]byte(out), []byte("-A INPUT -s 10.0.0.0/8 -j ACCEPT"))
	require.NotEqual(t, -1, drop)
	require.NotEqual(t, -1, accept)
	assert.Less(t, drop, accept)
}

func TestRuleSet_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewRuleSet().WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seededDump)), n)
	assert.Equal(t, seededDump, buf.String())
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"router": `# Generated by iptables-save v1.8.7 on Tue Oct 14 10:00:00 2026
*filter
:INPUT DROP [1234:56789]
:FORWARD DROP [0:0]
:OUTPUT ACCEPT [10:200]
:WAN_IN - [0:0]
-A INPUT -i lo -j ACCEPT
-A INPUT -m state --state RELATED,ESTABLISHED -j ACCEPT
-A INPUT -i eth0 -j WAN_IN
-A INPUT -p tcp -m tcp --dport 22 -j ACCEPT
-A INPUT -j REJECT --reject-with icmp-port-unreachable
-A FORWARD -i eth1 -o eth0 -j ACCEPT
-A WAN_IN -s 10.0.0.0/8 -j DROP
-A WAN_IN -j RETURN
COMMIT
*mangle
:PREROUTING ACCEPT [0:0]
-A PREROUTING -i eth1 -j MARK --set-mark 1
COMMIT
*nat
:POSTROUTING ACCEPT [0:0]
-A POSTROUTING -o eth0 -j MASQUERADE
-A PREROUTING -i eth0 -p tcp --dport 8080 -j DNAT --to-destination 192.168.1.10:80
COMMIT
`,
		"seeded":   seededDump,
		"no rules": "*nat\nCOMMIT\n",
	}

	for name, text := range inputs {
		t.Run(name, func(t *testing.T) {
			first := mustParse(t, text)
			out := Serialize(first)

			second := mustParse(t, out)
			assert.True(t, first.Equal(second), "round trip changed the rule set:\n%s", out)
			assert.Equal(t, out, Serialize(second), "serialization is not stable")
		})
	}
}
