package cmd

import (
	"fmt"
	"os"

	"grimm.is/fwtranslate/internal/i18n"
	"grimm.is/fwtranslate/internal/iptables/live"
)

// Replaced in tests.
var (
	newRunner = live.NewRunner
	geteuid   = os.Geteuid
)

func liveClient(e *env) (*live.Client, error) {
	if geteuid() != 0 {
		return nil, fmt.Errorf("must run as root to access iptables")
	}
	runner, err := newRunner()
	if err != nil {
		return nil, err
	}
	return live.NewClient(runner, e.log), nil
}

// RunSnapshot reads the running rule set and prints it in canonical form,
// or writes it to output when given.
func RunSnapshot(opts Options, output string) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.finish()

	client, err := liveClient(e)
	if err != nil {
		return err
	}
	rs, err := client.Snapshot(e.parseOptions()...)
	e.metrics.RecordLive("snapshot", err)
	if err != nil {
		return fmt.Errorf("failed to snapshot rule set: %w", err)
	}

	out := e.serialize(rs)
	if output == "" {
		_, err = fmt.Fprint(stdout, out)
		return err
	}
	if err := os.WriteFile(output, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	Printer.Fprintf(stdout, i18n.MsgSnapshotSaved, output)
	return nil
}

// RunApply loads a dump into the kernel. With dryRun set the canonical
// form is printed instead.
func RunApply(opts Options, file string, dryRun bool) error {
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

	if dryRun {
		_, err = fmt.Fprint(stdout, e.serialize(rs))
		return err
	}

	client, err := liveClient(e)
	if err != nil {
		return err
	}
	err = client.Apply(rs)
	e.metrics.RecordLive("apply", err)
	if err != nil {
		return fmt.Errorf("failed to apply rule set: %w", err)
	}

	Printer.Fprintf(stdout, i18n.MsgApplied, rs.RuleCount())
	return nil
}
