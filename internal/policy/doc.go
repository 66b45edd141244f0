// Package policy holds the backend-neutral building blocks of a firewall
// rule: protocols, ports, addresses, interfaces, time windows and the
// abstract decision (allow, deny, reply, log).
//
// Every value is immutable once constructed. Constructors validate their
// input and return an error instead of a half-built value.
//
// Each type renders two ways:
//   - String() is the display form, preferring a human-assigned name.
//   - GoString() is the debug form (used by %#v) and shows everything.
//
// A backend turns an [Action] into its own terminal target through a
// [TargetMapper].
package policy
