package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"grimm.is/fwtranslate/internal/brand"
	"grimm.is/fwtranslate/internal/config"
	"grimm.is/fwtranslate/internal/i18n"
	"grimm.is/fwtranslate/internal/iptables"
	"grimm.is/fwtranslate/internal/logging"
	"grimm.is/fwtranslate/internal/metrics"
)

// Printer is the global message printer for the CLI
var Printer = i18n.NewCLIPrinter()

// Replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// Options are the flags shared by every command.
type Options struct {
	ConfigFile string // empty: default path, silently skipped when missing
	Strict     bool   // overrides parser.strict when set
	Verbose    bool
}

// env is the per-command runtime built from Options and the config file.
type env struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Registry
	strict  bool
}

func setup(opts Options) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile == "" {
		cfg, err = config.LoadOrDefault(brand.DefaultConfigPath())
	} else {
		cfg, err = config.LoadFile(opts.ConfigFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.LoggingConfig())
	if opts.Verbose {
		logger.SetLevel(logging.LevelDebug)
	}
	logging.SetDefault(logger)

	return &env{
		cfg:     cfg,
		log:     logger,
		metrics: metrics.Get(),
		strict:  opts.Strict || cfg.Parser.Strict,
	}, nil
}

func (e *env) parseOptions() []iptables.ParseOption {
	return []iptables.ParseOption{iptables.WithStrict(e.strict), iptables.WithLogger(e.log)}
}

// parse parses text and records the run.
func (e *env) parse(text string) (*iptables.RuleSet, error) {
	p := iptables.NewParser(e.parseOptions()...)
	start := time.Now()
	rs, err := p.Parse(text)
	e.metrics.RecordParse(p.Stats(), rs, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if dropped := p.Stats().DroppedTokens; dropped > 0 {
		e.log.Warn("Dropped unpaired tokens, run lint for details", "count", dropped)
	}
	return rs, nil
}

func (e *env) serialize(rs *iptables.RuleSet) string {
	e.metrics.RecordSerialize()
	return iptables.Serialize(rs)
}

// finish exports metrics when configured. Failures are only logged.
func (e *env) finish() {
	path := e.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := e.metrics.WriteTextfile(path); err != nil {
		e.log.Warn("Failed to write metrics", "path", path, "error", err)
	}
}

// readInput reads a file, or stdin for "" and "-".
func readInput(file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "" || file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// counts returns the number of rules and chains in rs.
func counts(rs *iptables.RuleSet) (rules, chains int) {
	rs.ForEach(func(t *iptables.Table) {
		chains += t.Len()
	})
	return rs.RuleCount(), chains
}
