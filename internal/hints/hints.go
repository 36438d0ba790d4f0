// Package hints holds the per-institution hint registry. Hints are
// declarative YAML records embedded at build time; the pipeline runs
// fully without them and only uses a hint to raise confidence or add
// institution-specific skip patterns.
package hints

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/insightdelivered/statement-tabulator/internal/models"
)

//go:embed registry.yaml
var registryYAML []byte

type registryFile struct {
	Institutions []models.InstitutionHint `yaml:"institutions"`
}

var registry map[string]*models.InstitutionHint

func init() {
	var err error
	registry, err = parseRegistry(registryYAML)
	if err != nil {
		panic(fmt.Sprintf("hints: bad embedded registry: %v", err))
	}
}

func parseRegistry(data []byte) (map[string]*models.InstitutionHint, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	m := make(map[string]*models.InstitutionHint, len(f.Institutions))
	for i := range f.Institutions {
		h := &f.Institutions[i]
		if h.Name == "" {
			return nil, fmt.Errorf("institution %d has no name", i)
		}
		m[strings.ToLower(h.Name)] = h
	}
	return m, nil
}

// Lookup returns the hint registered under a name, case-insensitive.
func Lookup(name string) (*models.InstitutionHint, bool) {
	h, ok := registry[strings.ToLower(name)]
	return h, ok
}

// Names lists the registered institution names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, h := range registry {
		out = append(out, h.Name)
	}
	return out
}

// Match scans document text for institution keywords and returns the
// hint with the most hits. Every keyword of a candidate adds one; the
// winner needs at least one hit. Candidates are scanned in name order
// so a hit-count tie resolves the same way on every run.
func Match(text string) (*models.InstitutionHint, bool) {
	lower := strings.ToLower(text)
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	var best *models.InstitutionHint
	bestHits := 0
	for _, name := range names {
		h := registry[name]
		hits := 0
		for _, kw := range h.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = h, hits
		}
	}
	return best, best != nil
}
