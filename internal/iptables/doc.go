// Package iptables models an iptables rule set and reads and writes it in
// the iptables-save text format.
//
// # Overview
//
//	text → Parser → RuleSet → Serialize → text
//
// A [RuleSet] always holds the three tables this backend knows about
// (filter, mangle, nat). Each [Table] owns insertion-ordered chains, each
// [Chain] owns an ordered list of [Rule] values, and each rule keeps its
// match and target parameters in encounter order ([Params]).
//
// # Format
//
//	# comment
//	*filter
//	:INPUT ACCEPT [0:0]
//	-A INPUT -s 10.0.0.0/8 -j DROP
//	COMMIT
//
// # Tokenization
//
// Rule bodies are split on single spaces and paired positionally into
// flag/value pairs. Flags without a value, quoted multi-word values and
// "!" negation are not understood: they shift the pairing, and a trailing
// odd token is dropped. A repeated flag keeps its first position and its
// last value. [Lint] reports lines affected by these limitations.
//
// # Policy mapping
//
// [Action] is the iptables view of a [policy.Action]; [Mapper] implements
// [policy.TargetMapper] and [RuleBuilder] turns policy value objects into
// a [Rule].
package iptables
