package policy

import (
	"fmt"
	"strings"
)

// Action is the abstract decision taken for matching traffic.
//
// The three facets are independent except that allow and reply can't be
// combined: a reply (ICMP unreachable, TCP reset) only makes sense when the
// traffic is refused.
type Action struct {
	allow bool
	reply bool
	log   bool
}

// NewAction creates an action. allow together with reply fails with
// ErrNotSupported.
func NewAction(allow, reply, log bool) (Action, error) {
	if allow && reply {
		return Action{}, fmt.Errorf("%w: ICMP reply not allowed when allowing traffic", ErrNotSupported)
	}
	return Action{allow: allow, reply: reply, log: log}, nil
}

var (
	Allow = Action{allow: true}
	Deny  = Action{}
	// Reject denies and answers the sender.
	Reject = Action{reply: true}
)

func (a Action) Allow() bool { return a.allow }
func (a Action) Reply() bool { return a.reply }
func (a Action) Log() bool   { return a.log }

// String renders e.g. "deny with ICMP reply and log".
func (a Action) String() string {
	parts := []string{verdict(a.allow)}
	if a.reply {
		parts = append(parts, "with ICMP reply")
	}
	if a.log {
		parts = append(parts, "and log")
	}
	return strings.Join(parts, " ")
}

// GoString renders e.g. "<Action deny reply log>".
func (a Action) GoString() string {
	parts := []string{verdict(a.allow)}
	if a.reply {
		parts = append(parts, "reply")
	}
	if a.log {
		parts = append(parts, "log")
	}
	return fmt.Sprintf("<Action %s>", strings.Join(parts, " "))
}

func verdict(allow bool) string {
	if allow {
		return "allow"
	}
	return "deny"
}

// TargetMapper turns an abstract Action into a backend's terminal target.
// Backends that can't express some facet of the action return an error
// wrapping ErrNotSupported.
type TargetMapper interface {
	TargetName(Action) (string, error)
}
