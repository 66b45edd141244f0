package cmd

import (
	"errors"

	"grimm.is/fwtranslate/internal/i18n"
	"grimm.is/fwtranslate/internal/iptables"
)

// ErrLintWarnings is returned by RunLint when any warning was reported.
var ErrLintWarnings = errors.New("lint reported warnings")

// RunLint reports rule lines the parser would represent lossily.
func RunLint(opts Options, file string) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.finish()

	text, err := readInput(file)
	if err != nil {
		return err
	}

	warnings := iptables.Lint(text)
	e.metrics.RecordLint(len(warnings))

	if len(warnings) == 0 {
		Printer.Fprintf(stdout, i18n.MsgNoWarnings)
		return nil
	}
	for _, w := range warnings {
		Printer.Fprintf(stdout, "%s\n", w)
		if opts.Verbose {
			Printer.Fprintf(stdout, "    %s\n", w.Text)
		}
	}
	Printer.Fprintf(stdout, i18n.MsgWarnings, len(warnings))
	return ErrLintWarnings
}
