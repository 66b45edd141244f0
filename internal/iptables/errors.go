package iptables

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTable         = errors.New("unknown table")
	ErrNoActiveTable        = errors.New("no active table")
	ErrMalformedLine        = errors.New("malformed line")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnknownChain         = errors.New("unknown chain")
	ErrDuplicateChain       = errors.New("chain already exists")
	ErrEmptyChainName       = errors.New("chain name cannot be empty")
	ErrMissingCommit        = errors.New("table not committed")
	ErrRuleNotFound         = errors.New("rule not found")
)

// Expected forms reported in a ParseError.
const (
	formTable = "*<table>"
	formChain = ":<chain> <POLICY> [<packets>:<bytes>]"
	formRule  = "-A <chain> [<flag> <value>]... [-j <target> [<flag> <value>]...]"
	formAny   = "comment, *<table>, :<chain>, -A <chain> or COMMIT"
)

// ParseError locates a parse failure. It unwraps to one of the package's
// sentinel errors.
type ParseError struct {
	Line     int    // 1-based line number
	Text     string // offending line
	Expected string // form the line should have had
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d: %v", e.Line, e.Err)
	if e.Text != "" {
		msg += fmt.Sprintf(": %q", e.Text)
	}
	if e.Expected != "" {
		msg += fmt.Sprintf(" (expected %s)", e.Expected)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
