package iptables

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Warning points at a line the parser accepts but can't represent
// faithfully.
type Warning struct {
	Line    int
	Text    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Lint reports rule lines hit by the parser's tokenization limits: quoted
// values, negation, flags without a value, odd token counts and repeated
// flags. It never changes how the text parses.
func Lint(text string) []Warning {
	var warnings []Warning
	sw := shellwords.NewParser()

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "-") {
			continue
		}

		warn := func(format string, args ...any) {
			warnings = append(warnings, Warning{Line: lineNo, Text: line, Message: fmt.Sprintf(format, args...)})
		}

		directive, rest, _ := strings.Cut(line, " ")
		if directive != directiveAppend {
			warn("directive %s is not supported, only %s", directive, directiveAppend)
			continue
		}

		words, err := sw.Parse(line)
		if err != nil {
			warn("unbalanced quoting: %v", err)
		} else if !sameTokens(words, strings.Split(line, " ")) {
			warn("quoted or space-separated value will be split on single spaces")
		}

		_, body, _ := strings.Cut(rest, " ")
		matchPortion, actionPortion, hasTarget := splitTarget(body)
		lintPortion(warn, "match", matchPortion)
		if hasTarget {
			_, params, _ := strings.Cut(strings.TrimSpace(actionPortion), " ")
			lintPortion(warn, "target", params)
		}
	}
	return warnings
}

func lintPortion(warn func(string, ...any), what, portion string) {
	portion = strings.TrimSpace(portion)
	if portion == "" {
		return
	}
	tokens := strings.Split(portion, " ")

	seen := make(map[string]bool)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "!" {
			warn("negation in %s is not supported", what)
		}
		if i%2 == 0 {
			if i+1 < len(tokens) && seen[tok] {
				warn("%s flag %s repeated, only the last value is kept", what, tok)
			}
			seen[tok] = true
			continue
		}
		if looksLikeFlag(tok) {
			warn("%s flag %s is paired as a value of %s", what, tok, tokens[i-1])
		}
	}
	if len(tokens)%2 == 1 {
		warn("odd %s token count, %q is dropped", what, tokens[len(tokens)-1])
	}
}

func looksLikeFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	c := tok[1]
	return c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func sameTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
