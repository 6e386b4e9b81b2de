package categorize

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one keyword/regex categorization rule. Rules are evaluated in
// declaration order; Type restricts a rule to DEBIT or CREDIT rows, empty
// applies to both.
type Rule struct {
	Pattern     string `yaml:"pattern"`
	Category    string `yaml:"category"`
	SubCategory string `yaml:"subCategory"`
	Type        string `yaml:"type,omitempty"`
}

type compiledRule struct {
	re          *regexp.Regexp
	category    string
	subCategory string
	txType      string
}

// loadRules reads and compiles the ordered rule file. A missing file is an
// empty rule set; a rule with a broken pattern fails loudly rather than
// being silently skipped at categorization time.
func loadRules(path string) ([]compiledRule, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule pattern %q: %w", r.Pattern, err)
		}
		compiled = append(compiled, compiledRule{
			re:          re,
			category:    r.Category,
			subCategory: r.SubCategory,
			txType:      strings.ToUpper(strings.TrimSpace(r.Type)),
		})
	}
	return compiled, nil
}
