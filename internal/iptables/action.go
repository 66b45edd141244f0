package iptables

import (
	"fmt"

	"grimm.is/fwtranslate/internal/policy"
)

// Terminal targets.
const (
	TargetAccept = "ACCEPT"
	TargetDrop   = "DROP"
	TargetReject = "REJECT"
	TargetReturn = "RETURN"
)

// Action is what iptables can express of a policy.Action: allow or deny,
// optionally with a reply. Logging needs a separate LOG rule, so an action
// asking for it is rejected rather than silently losing the log.
type Action struct {
	allow bool
	reply bool
}

// NewAction validates the facets for this backend.
func NewAction(allow, reply, log bool) (Action, error) {
	if log {
		return Action{}, fmt.Errorf("%w: iptables can't log as part of a verdict", policy.ErrNotSupported)
	}
	if _, err := policy.NewAction(allow, reply, false); err != nil {
		return Action{}, err
	}
	return Action{allow: allow, reply: reply}, nil
}

// FromPolicy converts an abstract action.
func FromPolicy(a policy.Action) (Action, error) {
	return NewAction(a.Allow(), a.Reply(), a.Log())
}

func (a Action) Allow() bool { return a.allow }
func (a Action) Reply() bool { return a.reply }

// Target returns ACCEPT, REJECT or DROP.
func (a Action) Target() string {
	switch {
	case a.allow:
		return TargetAccept
	case a.reply:
		return TargetReject
	default:
		return TargetDrop
	}
}

func (a Action) String() string { return a.Target() }

// Mapper maps abstract actions to iptables targets.
type Mapper struct{}

var _ policy.TargetMapper = Mapper{}

// TargetName implements policy.TargetMapper.
func (Mapper) TargetName(a policy.Action) (string, error) {
	ia, err := FromPolicy(a)
	if err != nil {
		return "", err
	}
	return ia.Target(), nil
}
