package iptables

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"grimm.is/fwtranslate/internal/logging"
)

const (
	directiveAppend = "-A"
	targetMarker    = "-j"
	commitLine      = "COMMIT"
)

var countersRegex = regexp.MustCompile(`^\[\d+:\d+\]$`)

// Stats counts what the last parse run saw.
type Stats struct {
	Lines         int
	Blank         int
	Comments      int
	Tables        int
	Chains        int
	Rules         int
	DroppedTokens int
}

type parseOptions struct {
	strict bool
	logger *logging.Logger
}

// ParseOption configures a Parser.
type ParseOption func(*parseOptions)

// WithStrict makes the parser reject COMMIT without an open table, a table
// switch without a preceding COMMIT, input ending inside a table and chain
// policies other than ACCEPT, DROP, RETURN or "-".
func WithStrict(strict bool) ParseOption {
	return func(o *parseOptions) {
		o.strict = strict
	}
}

// WithLogger sets the logger used for per-line debug output.
func WithLogger(l *logging.Logger) ParseOption {
	return func(o *parseOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Parser reads iptables-save text into a RuleSet. A Parser is not safe for
// concurrent use; create one per goroutine.
type Parser struct {
	opts  parseOptions
	log   *logging.Logger
	stats Stats
}

// NewParser creates a parser. By default it is forgiving and logs to the
// default logger.
func NewParser(opts ...ParseOption) *Parser {
	o := parseOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return &Parser{opts: o, log: o.logger.WithComponent("iptables")}
}

// Parse is shorthand for NewParser(opts...).Parse(text).
func Parse(text string, opts ...ParseOption) (*RuleSet, error) {
	return NewParser(opts...).Parse(text)
}

// Read parses text into rs. On failure rs is left untouched.
func (rs *RuleSet) Read(text string, opts ...ParseOption) error {
	return NewParser(opts...).ParseInto(rs, text)
}

// Stats returns the counters of the last run.
func (p *Parser) Stats() Stats {
	return p.stats
}

// Parse parses text into a freshly seeded RuleSet.
func (p *Parser) Parse(text string) (*RuleSet, error) {
	rs := NewRuleSet()
	if err := p.ParseInto(rs, text); err != nil {
		return nil, err
	}
	return rs, nil
}

// ParseInto parses text into rs. The whole text is processed against a
// copy which replaces rs only if every line parsed.
func (p *Parser) ParseInto(rs *RuleSet, text string) error {
	p.stats = Stats{}
	work := rs.Clone()

	st := &parseState{rs: work}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		st.lineNo++
		p.stats.Lines++
		if err := p.parseLine(st, strings.TrimSpace(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading rule set: %w", err)
	}

	if p.opts.strict && st.table != nil {
		return &ParseError{Line: st.lineNo, Expected: commitLine,
			Err: fmt.Errorf("%w: %s", ErrMissingCommit, st.table.name)}
	}

	*rs = *work
	p.log.Debug("Parsed rule set", "lines", p.stats.Lines, "chains", p.stats.Chains, "rules", p.stats.Rules)
	return nil
}

type parseState struct {
	rs     *RuleSet
	table  *Table
	lineNo int
}

func (st *parseState) fail(line, expected string, err error) error {
	return &ParseError{Line: st.lineNo, Text: line, Expected: expected, Err: err}
}

func (p *Parser) parseLine(st *parseState, line string) error {
	switch {
	case line == "":
		p.stats.Blank++
		return nil

	case strings.HasPrefix(line, "#"):
		p.stats.Comments++
		p.log.Debug("Found a comment", "line", st.lineNo)
		return nil

	case strings.HasPrefix(line, "*"):
		return p.parseTable(st, line)

	case strings.HasPrefix(line, ":"):
		return p.parseChain(st, line)

	case line == commitLine:
		if st.table == nil {
			if p.opts.strict {
				return st.fail(line, formTable, fmt.Errorf("%w: COMMIT outside a table", ErrNoActiveTable))
			}
			p.log.Debug("Ignoring COMMIT outside a table", "line", st.lineNo)
			return nil
		}
		p.log.Debug("Finished reading table", "table", st.table.name)
		st.table = nil
		return nil

	case strings.HasPrefix(line, "-"):
		return p.parseRule(st, line)
	}

	return st.fail(line, formAny, ErrMalformedLine)
}

func (p *Parser) parseTable(st *parseState, line string) error {
	name, err := ParseTableName(line[1:])
	if err != nil {
		return st.fail(line, formTable, err)
	}
	if p.opts.strict && st.table != nil {
		return st.fail(line, commitLine, fmt.Errorf("%w: %s", ErrMissingCommit, st.table.name))
	}

	st.table = st.rs.Table(name)
	st.rs.MarkPresent(name)
	p.stats.Tables++
	p.log.Debug("Found a table definition", "table", name, "line", st.lineNo)
	return nil
}

func (p *Parser) parseChain(st *parseState, line string) error {
	fields := strings.Split(line[1:], " ")
	if len(fields) != 3 || fields[0] == "" || fields[1] == "" || !countersRegex.MatchString(fields[2]) {
		return st.fail(line, formChain, ErrMalformedLine)
	}
	if st.table == nil {
		return st.fail(line, formTable, ErrNoActiveTable)
	}

	name, policy := fields[0], Policy(fields[1])
	if !policy.Valid() {
		if p.opts.strict {
			return st.fail(line, formChain, fmt.Errorf("%w: unknown policy %s", ErrMalformedLine, policy))
		}
		p.log.Debug("Keeping unknown chain policy", "line", st.lineNo, "policy", policy)
	}

	// A redeclared chain, seeded built-ins included, takes the declared
	// policy and keeps its rules and position.
	if c, ok := st.table.Chain(name); ok {
		c.SetPolicy(policy)
	} else if _, err := st.table.NewChain(name, policy); err != nil {
		return st.fail(line, formChain, err)
	}

	p.stats.Chains++
	p.log.Debug("Found a chain definition", "table", st.table.name, "chain", name, "policy", policy)
	return nil
}

func (p *Parser) parseRule(st *parseState, line string) error {
	directive, rest, _ := strings.Cut(line, " ")
	if directive != directiveAppend {
		return st.fail(line, formRule, fmt.Errorf("%w: %s", ErrUnsupportedOperation, directive))
	}
	if st.table == nil {
		return st.fail(line, formTable, ErrNoActiveTable)
	}

	chainName, body, _ := strings.Cut(rest, " ")
	if chainName == "" {
		return st.fail(line, formRule, ErrMalformedLine)
	}
	chain, ok := st.table.Chain(chainName)
	if !ok {
		return st.fail(line, formChain, fmt.Errorf("%w: %s in table %s", ErrUnknownChain, chainName, st.table.name))
	}

	matchPortion, actionPortion, hasTarget := splitTarget(body)
	match, dropped := pairTokens(matchPortion)
	p.noteDropped(st, dropped)

	rule := Rule{Match: match}
	if hasTarget {
		action := strings.TrimSpace(actionPortion)
		target, paramPortion, _ := strings.Cut(action, " ")
		if target == "" {
			return st.fail(line, formRule, fmt.Errorf("%w: missing target after %s", ErrMalformedLine, targetMarker))
		}
		rule.Target = target
		rule.TargetParams, dropped = pairTokens(paramPortion)
		p.noteDropped(st, dropped)
	}

	chain.Append(rule)
	p.stats.Rules++
	p.log.Debug("Found a rule definition", "table", st.table.name, "chain", chainName,
		"target", rule.Target, "matches", rule.Match.Len())
	return nil
}

func (p *Parser) noteDropped(st *parseState, dropped string) {
	if dropped == "" {
		return
	}
	p.stats.DroppedTokens++
	p.log.Debug("Dropping unpaired token", "line", st.lineNo, "token", dropped)
}

// splitTarget cuts a rule body at the first standalone "-j" token.
func splitTarget(body string) (match, action string, found bool) {
	for i := 0; i+len(targetMarker) <= len(body); i++ {
		if body[i:i+len(targetMarker)] != targetMarker {
			continue
		}
		end := i + len(targetMarker)
		if (i == 0 || body[i-1] == ' ') && (end == len(body) || body[end] == ' ') {
			return body[:i], body[end:], true
		}
	}
	return body, "", false
}

// pairTokens splits on single spaces and pairs tokens positionally into
// flag/value pairs. An unpaired trailing token is returned as dropped.
func pairTokens(portion string) (params Params, dropped string) {
	portion = strings.TrimSpace(portion)
	if portion == "" {
		return Params{}, ""
	}

	tokens := strings.Split(portion, " ")
	params = NewParams(tokens...)
	if len(tokens)%2 == 1 {
		dropped = tokens[len(tokens)-1]
	}
	return params, dropped
}
