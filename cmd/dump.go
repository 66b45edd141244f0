package cmd

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"

	"grimm.is/fwtranslate/internal/config"
	"grimm.is/fwtranslate/internal/iptables"
)

type paramDoc struct {
	Flag  string `json:"flag"`
	Value string `json:"value"`
}

// paramList keeps parameter order in both encodings: a JSON array, and a
// YAML mapping in insertion order.
type paramList []paramDoc

func (p paramList) MarshalYAML() (interface{}, error) {
	m := make(yaml.MapSlice, 0, len(p))
	for _, it := range p {
		m = append(m, yaml.MapItem{Key: it.Flag, Value: it.Value})
	}
	return m, nil
}

type ruleDoc struct {
	Match        paramList `json:"match,omitempty" yaml:"match,omitempty"`
	Target       string    `json:"target,omitempty" yaml:"target,omitempty"`
	TargetParams paramList `json:"target_params,omitempty" yaml:"target_params,omitempty"`
}

type chainDoc struct {
	Name   string    `json:"name" yaml:"name"`
	Policy string    `json:"policy" yaml:"policy"`
	Rules  []ruleDoc `json:"rules,omitempty" yaml:"rules,omitempty"`
}

type tableDoc struct {
	Name   string     `json:"name" yaml:"name"`
	Chains []chainDoc `json:"chains" yaml:"chains"`
}

func newParamList(p iptables.Params) paramList {
	var out paramList
	p.ForEach(func(flag, value string) {
		out = append(out, paramDoc{Flag: flag, Value: value})
	})
	return out
}

func newDump(rs *iptables.RuleSet) []tableDoc {
	var tables []tableDoc
	rs.ForEach(func(t *iptables.Table) {
		td := tableDoc{Name: t.Name().String(), Chains: []chainDoc{}}
		t.ForEach(func(c *iptables.Chain) {
			cd := chainDoc{Name: c.Name(), Policy: c.Policy().String()}
			c.ForEach(func(_ int, r iptables.Rule) {
				cd.Rules = append(cd.Rules, ruleDoc{
					Match:        newParamList(r.Match),
					Target:       r.Target,
					TargetParams: newParamList(r.TargetParams),
				})
			})
			td.Chains = append(td.Chains, cd)
		})
		tables = append(tables, td)
	})
	return tables
}

// RunDump prints the parsed rule set as YAML or JSON. An empty format uses
// output.format from the config.
func RunDump(opts Options, file, format string) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.finish()

	if format == "" {
		format = e.cfg.Output.Format
	}

	text, err := readInput(file)
	if err != nil {
		return err
	}
	rs, err := e.parse(text)
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case config.FormatYAML:
		out, err = yaml.Marshal(newDump(rs))
	case config.FormatJSON:
		out, err = json.MarshalIndent(newDump(rs), "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown format %q (use %s or %s)", format, config.FormatYAML, config.FormatJSON)
	}
	if err != nil {
		return fmt.Errorf("failed to encode rule set: %w", err)
	}

	_, err = stdout.Write(out)
	return err
}
