package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/fwtranslate/internal/i18n"
	"grimm.is/fwtranslate/internal/iptables"
)

// ErrRoundTrip is returned by RunCheck when serializing the parsed rule
// set doesn't reproduce the input rules.
var ErrRoundTrip = errors.New("round trip changed the rule set")

// RunCheck parses a dump, serializes it and compares the rule lines of
// input and output. Lines the parser can't represent show up in the diff.
func RunCheck(opts Options, file string) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.finish()

	text, err := readInput(file)
	if err != nil {
		return err
	}
	rs, err := e.parse(text)
	if err != nil {
		return err
	}
	out := e.serialize(rs)

	again, err := e.parse(out)
	if err != nil {
		return fmt.Errorf("serialized output doesn't parse: %w", err)
	}
	if !rs.Equal(again) {
		return printDiff(out, e.serialize(again), "serialized", "reparsed")
	}

	before := ruleLines(text, rs)
	after := ruleLines(out, rs)
	if before == after {
		Printer.Fprintf(stdout, i18n.MsgRoundTripOK)
		return nil
	}
	return printDiff(before, after, "input", "serialized")
}

func printDiff(a, b, fromFile, toFile string) error {
	Printer.Fprintf(stdout, i18n.MsgRoundTripDiff)

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, text)
	return ErrRoundTrip
}

// ruleLines extracts the -A lines of text, grouped by chain in the order
// the chains appear in rs, so interleaved input compares equal to the
// serializer's chain-by-chain output.
func ruleLines(text string, rs *iptables.RuleSet) string {
	type key struct {
		table iptables.TableName
		chain string
	}
	groups := make(map[key][]string)

	var table iptables.TableName
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "*"):
			if name, err := iptables.ParseTableName(line[1:]); err == nil {
				table = name
			}
		case strings.HasPrefix(line, "-A "):
			chain, _, _ := strings.Cut(strings.TrimPrefix(line, "-A "), " ")
			k := key{table, chain}
			groups[k] = append(groups[k], line)
		}
	}

	var b strings.Builder
	rs.ForEach(func(t *iptables.Table) {
		for _, name := range t.ChainNames() {
			for _, line := range groups[key{t.Name(), name}] {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	})
	return b.String()
}
