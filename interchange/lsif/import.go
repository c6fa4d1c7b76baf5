package lsif

import (
	"sort"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/interchange"
	"github.com/aabizri/lsysviz/interchange/rules"
	"github.com/aabizri/lsysviz/turtle"
	"github.com/pkg/errors"
)

var ensureInterfaceCompliance interchange.Format = &Format{}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (format *Format) Import() (interchange.Definition, error) {
	if format.Axiom == "" {
		return interchange.Definition{}, errors.Wrapf(interchange.ErrMissingAxiom, "system %q", format.Name)
	}

	cfg := turtle.DefaultDrawConfig()
	for _, key := range sortedKeys(format.Config) {
		if err := interchange.ApplySetting(&cfg, key, format.Config[key]); err != nil {
			return interchange.Definition{}, errors.Wrapf(err, "system %q, config", format.Name)
		}
	}

	// Build the rules
	set := rules.NewSet()
	for _, from := range sortedKeys(format.Rules) {
		r, err := rules.Parse(from, format.Rules[from])
		if err == nil {
			err = set.Add(r)
		}
		if err != nil {
			return interchange.Definition{}, errors.Wrapf(err, "system %q, rule `%s -> %s`", format.Name, from, format.Rules[from])
		}
	}

	lsysviz.Logger().Debug("lsif: definition imported", "name", format.Name, "rules", set.Len())

	return interchange.Definition{
		Name: format.Name,
		Parameters: lsysviz.Parameters{
			Axiom:     lsysviz.ParseState(format.Axiom),
			Constants: lsysviz.ParseState(format.Constants),
			Rules:     set.Ruleset(),
		},
		Config: cfg,
	}, nil
}
