package main

import (
	"errors"
	"flag"
	"os"

	"grimm.is/fwtranslate/cmd"
	"grimm.is/fwtranslate/internal/brand"
	"grimm.is/fwtranslate/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

// commonFlags registers the flags every command accepts.
func commonFlags(fs *flag.FlagSet) *cmd.Options {
	opts := &cmd.Options{}
	fs.StringVar(&opts.ConfigFile, "config", "", "Configuration file (default "+brand.DefaultConfigPath()+")")
	fs.StringVar(&opts.ConfigFile, "c", "", "Configuration file (short)")
	fs.BoolVar(&opts.Strict, "strict", false, "Reject stray COMMIT lines and unterminated tables")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&opts.Verbose, "v", false, "Verbose output (short)")
	return opts
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	opts := commonFlags(fs)

	var err error
	switch os.Args[1] {
	case "parse":
		fs.Parse(os.Args[2:])
		err = cmd.RunParse(*opts, fs.Arg(0))

	case "fmt":
		write := fs.Bool("w", false, "Write result to the source file")
		fs.Parse(os.Args[2:])
		err = cmd.RunFmt(*opts, fs.Arg(0), *write)

	case "check":
		fs.Parse(os.Args[2:])
		err = cmd.RunCheck(*opts, fs.Arg(0))

	case "dump":
		format := fs.String("format", "", "Output format: yaml or json (default from config)")
		fs.StringVar(format, "f", "", "Output format (short)")
		fs.Parse(os.Args[2:])
		err = cmd.RunDump(*opts, fs.Arg(0), *format)

	case "lint":
		fs.Parse(os.Args[2:])
		err = cmd.RunLint(*opts, fs.Arg(0))

	case "snapshot":
		output := fs.String("output", "", "Write to file instead of stdout")
		fs.StringVar(output, "o", "", "Write to file (short)")
		fs.Parse(os.Args[2:])
		err = cmd.RunSnapshot(*opts, *output)

	case "apply":
		dryRun := fs.Bool("dry-run", false, "Print the rule set instead of applying it")
		fs.BoolVar(dryRun, "n", false, "Dry run (short)")
		fs.Parse(os.Args[2:])
		err = cmd.RunApply(*opts, fs.Arg(0), *dryRun)

	case "version":
		printer.Printf("%s %s\n", brand.BinaryName, brand.Version)

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		// Lint and check already printed their findings.
		if !errors.Is(err, cmd.ErrLintWarnings) && !errors.Is(err, cmd.ErrRoundTrip) {
			printer.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options] [file]

Input is read from stdin when no file (or "-") is given.

Commands:
  parse     Parse an iptables-save dump and print a summary
  fmt       Print the dump in canonical form
            Options: -w (write back to file)
  check     Verify the dump survives a parse/serialize round trip
  dump      Print the parsed rule set as structured data
            Options: --format (-f) yaml|json
  lint      Report rules the parser can't represent faithfully
  snapshot  Read the running rule set (requires root)
            Options: --output (-o) <file>
  apply     Load a dump into the kernel (requires root)
            Options: --dry-run (-n)
  version   Print the version

Common options:
  --config (-c) <file>   Configuration file
  --strict               Reject stray COMMIT lines and unterminated tables
  --verbose (-v)         Verbose output

Examples:
  iptables-save | %s check
  %s dump -f json /etc/iptables/rules.v4
  %s snapshot -o /tmp/running.v4
`,
		brand.Name, brand.Description,
		brand.LowerName,
		brand.LowerName, brand.LowerName, brand.LowerName)
}
