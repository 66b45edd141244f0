// Package live reads and writes the kernel's iptables rule set through
// github.com/coreos/go-iptables.
//
// Snapshot rebuilds iptables-save text from per-chain listings and parses
// it, so everything the parser can't represent is lost the same way it
// would be for a saved dump. Apply is not atomic: chains are flushed and
// refilled one call at a time. Use iptables-restore with the serialized
// rule set when atomicity matters.
package live

import (
	"fmt"
	"strings"

	goiptables "github.com/coreos/go-iptables/iptables"

	"grimm.is/fwtranslate/internal/iptables"
	"grimm.is/fwtranslate/internal/logging"
	"grimm.is/fwtranslate/internal/validation"
)

// Runner is the subset of *goiptables.IPTables used here.
type Runner interface {
	ListChains(table string) ([]string, error)
	List(table, chain string) ([]string, error)
	ClearChain(table, chain string) error
	ChangePolicy(table, chain, target string) error
	Append(table, chain string, rulespec ...string) error
}

var _ Runner = (*goiptables.IPTables)(nil)

// NewRunner returns a runner for the IPv4 iptables binary.
func NewRunner() (Runner, error) {
	ipt, err := goiptables.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize iptables: %w", err)
	}
	return ipt, nil
}

// Client snapshots and applies rule sets.
type Client struct {
	runner Runner
	log    *logging.Logger
}

// NewClient wraps a runner. A nil logger uses the default.
func NewClient(r Runner, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{runner: r, log: log.WithComponent("live")}
}

// Snapshot reads the running rule set.
func (c *Client) Snapshot(opts ...iptables.ParseOption) (*iptables.RuleSet, error) {
	text, err := c.SaveText()
	if err != nil {
		return nil, err
	}
	return iptables.Parse(text, opts...)
}

// SaveText renders the running rule set in iptables-save form from the
// "-S" listing of every chain.
func (c *Client) SaveText() (string, error) {
	var b strings.Builder

	for _, table := range iptables.TableNames() {
		chains, err := c.runner.ListChains(table.String())
		if err != nil {
			return "", fmt.Errorf("failed to list chains of table %s: %w", table, err)
		}

		var rules []string
		fmt.Fprintf(&b, "*%s\n", table)
		for _, chain := range chains {
			specs, err := c.runner.List(table.String(), chain)
			if err != nil {
				return "", fmt.Errorf("failed to list chain %s/%s: %w", table, chain, err)
			}

			policy := iptables.PolicyNone
			for _, spec := range specs {
				fields := strings.Fields(spec)
				if len(fields) == 0 {
					continue
				}
				switch fields[0] {
				case "-P":
					if len(fields) >= 3 {
						policy = iptables.Policy(fields[2])
					}
				case "-A":
					rules = append(rules, spec)
				}
			}
			fmt.Fprintf(&b, ":%s %s [0:0]\n", chain, policy)
		}
		for _, r := range rules {
			b.WriteString(r)
			b.WriteByte('\n')
		}
		b.WriteString("COMMIT\n")

		c.log.Debug("Listed table", "table", table, "chains", len(chains), "rules", len(rules))
	}

	return b.String(), nil
}

// Apply makes the kernel's chains match rs. Only tables present in rs are
// touched, as with iptables-restore. In those, every chain of rs is flushed
// (or created), built-in policies are set and rules are appended in order.
// Kernel chains absent from rs are left alone.
func (c *Client) Apply(rs *iptables.RuleSet) error {
	if err := validate(rs); err != nil {
		return err
	}

	for _, name := range iptables.TableNames() {
		if !rs.Present(name) {
			c.log.Debug("Skipping table absent from input", "table", name)
		}
	}

	for _, table := range rs.PresentTables() {
		name := table.Name().String()
		chains := table.Chains()

		// Create or flush every chain before any rule so jumps resolve.
		for _, chain := range chains {
			if err := c.runner.ClearChain(name, chain.Name()); err != nil {
				return fmt.Errorf("failed to flush chain %s/%s: %w", name, chain.Name(), err)
			}
		}

		for _, chain := range chains {
			if !chain.Policy().BuiltIn() {
				continue
			}
			if err := c.runner.ChangePolicy(name, chain.Name(), chain.Policy().String()); err != nil {
				return fmt.Errorf("failed to set policy of %s/%s: %w", name, chain.Name(), err)
			}
		}

		for _, chain := range chains {
			var err error
			chain.ForEach(func(i int, r iptables.Rule) {
				if err != nil {
					return
				}
				if e := c.runner.Append(name, chain.Name(), r.Tokens()...); e != nil {
					err = fmt.Errorf("failed to append rule %d to %s/%s: %w", i+1, name, chain.Name(), e)
				}
			})
			if err != nil {
				return err
			}
		}

		c.log.Info("Applied table", "table", name, "chains", len(chains))
	}
	return nil
}

// validate rejects chain and target names that iptables would refuse or
// misread as options.
func validate(rs *iptables.RuleSet) error {
	for _, table := range rs.PresentTables() {
		for _, chain := range table.Chains() {
			if err := validation.ValidateChainName(chain.Name()); err != nil {
				return fmt.Errorf("table %s: %w", table.Name(), err)
			}
			for i, r := range chain.Rules() {
				if !r.HasTarget() {
					continue
				}
				if err := validation.ValidateChainName(r.Target); err != nil {
					return fmt.Errorf("table %s, chain %s, rule %d: invalid target: %w", table.Name(), chain.Name(), i+1, err)
				}
			}
		}
	}
	return nil
}
