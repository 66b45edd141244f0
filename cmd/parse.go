package cmd

import (
	"fmt"
	"os"

	"grimm.is/fwtranslate/internal/i18n"
	"grimm.is/fwtranslate/internal/iptables"
)

// RunParse parses an iptables-save dump and prints a summary.
func RunParse(opts Options, file string) error {
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

	rules, chains := counts(rs)
	Printer.Fprintf(stdout, i18n.MsgSummary, rules, chains)

	if opts.Verbose {
		rs.ForEach(func(t *iptables.Table) {
			t.ForEach(func(c *iptables.Chain) {
				Printer.Fprintf(stdout, "  %s/%s %s: %d\n", t.Name(), c.Name(), c.Policy(), c.Len())
			})
		})
	}
	return nil
}

// RunFmt re-serializes a dump in canonical form. With write set the file
// is replaced in place.
func RunFmt(opts Options, file string, write bool) error {
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

	if !write {
		_, err = fmt.Fprint(stdout, out)
		return err
	}
	if file == "" || file == "-" {
		return fmt.Errorf("-w needs a file argument")
	}

	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	e.log.Info("Formatted rule set", "file", file)
	return nil
}
