// Package keywords loads the violation keyword dictionary that drives
// the first screening stage. The table ships as a YAML file so legal
// reviewers can amend it without a rebuild.
package keywords

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/medscreen/adscreen/internal/core/domain"
)

type tableFile struct {
	Keywords []entryFile `yaml:"keywords"`
}

type entryFile struct {
	Keyword     string `yaml:"keyword"`
	Category    string `yaml:"category"`
	Severity    string `yaml:"severity"`
	Law         string `yaml:"law"`
	Description string `yaml:"description"`
}

// Load reads and validates the keyword table. The service refuses to
// start on a broken table; a silent partial load would let flagged
// wording through unscored.
func Load(path string) ([]domain.KeywordEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if len(file.Keywords) == 0 {
		return nil, fmt.Errorf("keyword table %s: no keywords defined", path)
	}

	seen := make(map[string]struct{}, len(file.Keywords))
	entries := make([]domain.KeywordEntry, 0, len(file.Keywords))
	for i, item := range file.Keywords {
		keyword := strings.TrimSpace(item.Keyword)
		if keyword == "" {
			return nil, fmt.Errorf("keyword table %s: entry %d has an empty keyword", path, i+1)
		}

		lowered := strings.ToLower(keyword)
		if _, dup := seen[lowered]; dup {
			return nil, fmt.Errorf("keyword table %s: duplicate keyword %q", path, keyword)
		}
		seen[lowered] = struct{}{}

		severity := domain.Severity(strings.ToUpper(strings.TrimSpace(item.Severity)))
		if !severity.Valid() {
			return nil, fmt.Errorf("keyword table %s: keyword %q has unknown severity %q", path, keyword, item.Severity)
		}

		entries = append(entries, domain.KeywordEntry{
			Keyword:     keyword,
			Category:    strings.TrimSpace(item.Category),
			Severity:    severity,
			Law:         strings.TrimSpace(item.Law),
			Description: strings.TrimSpace(item.Description),
		})
	}
	return entries, nil
}
