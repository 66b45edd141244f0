package iptables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/fwtranslate/internal/policy"
)

func mustInterface(t *testing.T, name string) policy.Interface {
	t.Helper()
	i, err := policy.NewInterface(name)
	require.NoError(t, err)
	return i
}

func mustPort(t *testing.T, proto policy.Protocol, number int) policy.Port {
	t.Helper()
	p, err := policy.NewPort(proto, number, "")
	require.NoError(t, err)
	return p
}

func TestRuleBuilder_Basic(t *testing.T) {
	r, err := NewRuleBuilder().
		InInterface(mustInterface(t, "eth0")).
		Source(policy.MustIPAddress("10.1.2.3/8", "internal")).
		DestinationPort(mustPort(t, policy.TCP, 22)).
		Action(policy.Allow).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "-i eth0 -s 10.0.0.0/8 -p tcp --dport 22 -j ACCEPT", r.String())
}

func TestRuleBuilder_SerializesAndParses(t *testing.T) {
	r, err := NewRuleBuilder().
		OutInterface(mustInterface(t, "wg+")).
		Destination(policy.MustIPAddress("2001:db8::1", "")).
		Action(policy.Reject).
		TargetParam("--reject-with", "icmp6-adm-prohibited").
		Build()
	require.NoError(t, err)

	rs := NewRuleSet()
	output, _ := rs.Table(TableFilter).Chain("OUTPUT")
	output.Append(r)

	parsed := mustParse(t, Serialize(rs))
	assert.True(t, rs.Equal(parsed))
}

func TestRuleBuilder_AddressFamilies(t *testing.T) {
	_, err := NewRuleBuilder().
		Source(policy.MustIPAddress("10.0.0.0/8", "")).
		Destination(policy.MustIPAddress("2001:db8::/32", "")).
		Build()
	assert.ErrorIs(t, err, policy.ErrNotSupported)

	_, err = NewRuleBuilder().
		Destination(policy.MustIPAddress("2001:db8::1", "")).
		Source(policy.MustIPAddress("192.0.2.1", "")).
		Build()
	assert.ErrorIs(t, err, policy.ErrNotSupported)

	r, err := NewRuleBuilder().
		Source(policy.MustIPAddress("fd00::/8", "")).
		Destination(policy.MustIPAddress("2001:db8::1", "")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "-s fd00::/8 -d 2001:db8::1/128", r.String())
}

func TestRuleBuilder_Protocol(t *testing.T) {
	gre, err := policy.NewProtocol(47, "")
	require.NoError(t, err)

	r, err := NewRuleBuilder().Protocol(gre).Build()
	require.NoError(t, err)
	assert.Equal(t, "-p 47", r.String())

	// Same protocol twice is fine, a different one is not.
	_, err = NewRuleBuilder().Protocol(policy.UDP).SourcePort(mustPort(t, policy.UDP, 53)).Build()
	assert.NoError(t, err)

	_, err = NewRuleBuilder().Protocol(policy.UDP).DestinationPort(mustPort(t, policy.TCP, 80)).Build()
	assert.Error(t, err)
}

func TestRuleBuilder_PortNeedsTransport(t *testing.T) {
	_, err := NewRuleBuilder().DestinationPort(mustPort(t, policy.ICMP, 8)).Build()
	assert.ErrorIs(t, err, policy.ErrNotSupported)
}

func TestRuleBuilder_Interface(t *testing.T) {
	bad := mustInterface(t, "this-name-is-far-too-long")
	_, err := NewRuleBuilder().InInterface(bad).Build()
	assert.Error(t, err)
}

func TestRuleBuilder_During(t *testing.T) {
	t.Run("absolute", func(t *testing.T) {
		tr, err := policy.NewAbsoluteTimeRange(
			time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 31, 18, 30, 0, 0, time.UTC))
		require.NoError(t, err)

		r, err := NewRuleBuilder().During(tr).Action(policy.Deny).Build()
		require.NoError(t, err)
		assert.Equal(t, "-m time --datestart 2026-01-01T08:00:00 --datestop 2026-03-31T18:30:00 -j DROP", r.String())
	})

	t.Run("weekdays", func(t *testing.T) {
		tr, err := policy.NewPeriodicTimeRange(policy.Clock(9, 0, 0), policy.Clock(17, 30, 0),
			policy.Days(time.Friday, time.Monday))
		require.NoError(t, err)

		r, err := NewRuleBuilder().During(tr).Build()
		require.NoError(t, err)
		assert.Equal(t, "-m time --timestart 09:00:00 --timestop 17:30:00 --weekdays Mon,Fri", r.String())
	})

	t.Run("every day", func(t *testing.T) {
		tr, err := policy.NewPeriodicTimeRange(policy.Clock(0, 0, 0), policy.Clock(23, 59, 59), policy.EveryDay)
		require.NoError(t, err)

		r, err := NewRuleBuilder().During(tr).Build()
		require.NoError(t, err)
		assert.False(t, r.Match.Has(FlagWeekdays))
	})

	t.Run("module conflict", func(t *testing.T) {
		tr, err := policy.NewPeriodicTimeRange(policy.Clock(0, 0, 0), policy.Clock(1, 0, 0), policy.EveryDay)
		require.NoError(t, err)

		_, err = NewRuleBuilder().During(tr).During(tr).Build()
		assert.Error(t, err)
	})

	t.Run("nil range", func(t *testing.T) {
		_, err := NewRuleBuilder().During(nil).Build()
		assert.ErrorIs(t, err, policy.ErrAbstractTimeRange)
	})
}

func TestRuleBuilder_Targets(t *testing.T) {
	r, err := NewRuleBuilder().Jump("WAN_IN").Build()
	require.NoError(t, err)
	assert.Equal(t, "WAN_IN", r.Target)

	_, err = NewRuleBuilder().Jump("").Build()
	assert.ErrorIs(t, err, ErrEmptyChainName)

	_, err = NewRuleBuilder().TargetParam("--reject-with", "tcp-reset").Build()
	assert.Error(t, err)

	logged, err := policy.NewAction(false, true, true)
	require.NoError(t, err)
	_, err = NewRuleBuilder().Action(logged).Build()
	assert.ErrorIs(t, err, policy.ErrNotSupported)
}

type fixedMapper string

func (m fixedMapper) TargetName(policy.Action) (string, error) { return string(m), nil }

func TestRuleBuilder_WithMapper(t *testing.T) {
	r, err := NewRuleBuilder().WithMapper(fixedMapper("NFQUEUE")).Action(policy.Deny).Build()
	require.NoError(t, err)
	assert.Equal(t, "NFQUEUE", r.Target)
}
