package iptables

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"grimm.is/fwtranslate/internal/policy"
	"grimm.is/fwtranslate/internal/validation"
)

// Match flags emitted by RuleBuilder.
const (
	FlagProtocol     = "-p"
	FlagSource       = "-s"
	FlagDestination  = "-d"
	FlagInInterface  = "-i"
	FlagOutInterface = "-o"
	FlagMatch        = "-m"
	FlagSourcePort   = "--sport"
	FlagDestPort     = "--dport"
	FlagDateStart    = "--datestart"
	FlagDateStop     = "--datestop"
	FlagTimeStart    = "--timestart"
	FlagTimeStop     = "--timestop"
	FlagWeekdays     = "--weekdays"
)

// RuleBuilder assembles a Rule from policy value objects. The first error
// sticks and is returned by Build.
//
// Only one "-m" module fits in a rule's match mapping, so ports rely on the
// implicit match loaded by "-p tcp|udp" and the time module takes "-m".
type RuleBuilder struct {
	match        Params
	target       string
	targetParams Params
	mapper       policy.TargetMapper
	addrs        []policy.IPAddress
	err          error
}

// NewRuleBuilder returns a builder mapping actions with Mapper.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{mapper: Mapper{}}
}

// WithMapper replaces the action mapper.
func (b *RuleBuilder) WithMapper(m policy.TargetMapper) *RuleBuilder {
	b.mapper = m
	return b
}

func (b *RuleBuilder) fail(err error) *RuleBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Protocol matches an IP protocol by name, or by number when unnamed.
func (b *RuleBuilder) Protocol(p policy.Protocol) *RuleBuilder {
	return b.setProtocol(protocolToken(p))
}

func (b *RuleBuilder) setProtocol(token string) *RuleBuilder {
	if cur, ok := b.match.Get(FlagProtocol); ok && cur != token {
		return b.fail(fmt.Errorf("protocol already set to %s, can't match %s", cur, token))
	}
	b.match.Set(FlagProtocol, token)
	return b
}

func (b *RuleBuilder) Source(a policy.IPAddress) *RuleBuilder {
	return b.address(FlagSource, a)
}

func (b *RuleBuilder) Destination(a policy.IPAddress) *RuleBuilder {
	return b.address(FlagDestination, a)
}

// address sets an address match. Addresses of one rule share a family.
func (b *RuleBuilder) address(flag string, a policy.IPAddress) *RuleBuilder {
	for _, other := range b.addrs {
		if other.Is6() != a.Is6() {
			return b.fail(fmt.Errorf("%w: mixing %s and %s in one rule", policy.ErrNotSupported, other.Network(), a.Network()))
		}
	}
	b.addrs = append(b.addrs, a)
	b.match.Set(flag, a.Network().String())
	return b
}

func (b *RuleBuilder) InInterface(i policy.Interface) *RuleBuilder {
	return b.iface(FlagInInterface, i)
}

func (b *RuleBuilder) OutInterface(i policy.Interface) *RuleBuilder {
	return b.iface(FlagOutInterface, i)
}

func (b *RuleBuilder) iface(flag string, i policy.Interface) *RuleBuilder {
	if err := validation.ValidateInterfaceName(i.Name()); err != nil {
		return b.fail(err)
	}
	b.match.Set(flag, i.Name())
	return b
}

// SourcePort matches a source port and sets the port's protocol.
func (b *RuleBuilder) SourcePort(p policy.Port) *RuleBuilder {
	return b.port(FlagSourcePort, p)
}

// DestinationPort matches a destination port and sets the port's protocol.
func (b *RuleBuilder) DestinationPort(p policy.Port) *RuleBuilder {
	return b.port(FlagDestPort, p)
}

func (b *RuleBuilder) port(flag string, p policy.Port) *RuleBuilder {
	proto := protocolToken(p.Protocol())
	switch proto {
	case "tcp", "udp", "sctp", "dccp":
	default:
		return b.fail(fmt.Errorf("%w: port match on protocol %s", policy.ErrNotSupported, p.Protocol()))
	}
	b.setProtocol(proto)
	b.match.Set(flag, strconv.Itoa(p.Number()))
	return b
}

// During restricts the rule with the time match module.
func (b *RuleBuilder) During(tr policy.TimeRange) *RuleBuilder {
	if mod, ok := b.match.Get(FlagMatch); ok {
		return b.fail(fmt.Errorf("match module %s already set", mod))
	}

	switch r := tr.(type) {
	case policy.AbsoluteTimeRange:
		b.match.Set(FlagMatch, "time")
		b.match.Set(FlagDateStart, r.Start().UTC().Format("2006-01-02T15:04:05"))
		b.match.Set(FlagDateStop, r.Stop().UTC().Format("2006-01-02T15:04:05"))
	case policy.PeriodicTimeRange:
		b.match.Set(FlagMatch, "time")
		b.match.Set(FlagTimeStart, clockToken(r.Start()))
		b.match.Set(FlagTimeStop, clockToken(r.Stop()))
		if !r.Weekdays().All() {
			var days []string
			for _, d := range r.Weekdays().Selected() {
				days = append(days, d.String()[:3])
			}
			b.match.Set(FlagWeekdays, strings.Join(days, ","))
		}
	default:
		return b.fail(policy.ErrAbstractTimeRange)
	}
	return b
}

// Action sets the terminal target through the mapper.
func (b *RuleBuilder) Action(a policy.Action) *RuleBuilder {
	target, err := b.mapper.TargetName(a)
	if err != nil {
		return b.fail(err)
	}
	b.target = target
	return b
}

// Jump targets a user-defined chain.
func (b *RuleBuilder) Jump(chain string) *RuleBuilder {
	if chain == "" {
		return b.fail(ErrEmptyChainName)
	}
	b.target = chain
	return b
}

// TargetParam adds a target parameter such as --reject-with.
func (b *RuleBuilder) TargetParam(flag, value string) *RuleBuilder {
	b.targetParams.Set(flag, value)
	return b
}

// Build returns the rule or the first error hit while building.
func (b *RuleBuilder) Build() (Rule, error) {
	if b.err != nil {
		return Rule{}, b.err
	}
	if b.target == "" && b.targetParams.Len() > 0 {
		return Rule{}, errors.New("target parameters without a target")
	}
	return Rule{Match: b.match.Clone(), Target: b.target, TargetParams: b.targetParams.Clone()}, nil
}

func protocolToken(p policy.Protocol) string {
	if p.Name() != "" {
		return p.Name()
	}
	return strconv.Itoa(p.Number())
}

func clockToken(t policy.TimeOfDay) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
