package dispatch

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/billfold/billfold/pkg/models"
)

type subjectHint struct {
	re   *regexp.Regexp
	hint string
}

// SubjectHints maps email subject patterns to parser hints. The mapping
// file is maintained by the mailbox-side collaborator; patterns are tried
// in declaration order and the first match wins.
type SubjectHints struct {
	rules []subjectHint
}

// LoadSubjectHints reads the mapping file. A missing file is an empty
// mapping, every email then falls through to the generic parser.
func LoadSubjectHints(path string) (*SubjectHints, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &SubjectHints{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subject hints: %w", err)
	}

	var raw []struct {
		Subject string `yaml:"subject"`
		Hint    string `yaml:"hint"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse subject hints %s: %w", path, err)
	}

	hints := &SubjectHints{rules: make([]subjectHint, 0, len(raw))}
	for _, r := range raw {
		re, err := regexp.Compile("(?i)" + r.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject pattern %q: %w", r.Subject, err)
		}
		hints.rules = append(hints.rules, subjectHint{re: re, hint: r.Hint})
	}
	return hints, nil
}

// Match returns the hint for a subject line, empty when nothing matches.
func (h *SubjectHints) Match(subject string) string {
	for _, r := range h.rules {
		if r.re.MatchString(subject) {
			return r.hint
		}
	}
	return ""
}

// Document turns a mailbox record into a dispatchable document. An
// explicit ParserHint on the email wins over the subject mapping.
func (h *SubjectHints) Document(e models.Email) Document {
	hint := e.ParserHint
	if hint == "" {
		hint = h.Match(e.Subject)
	}
	return Document{
		Path:    e.AttachmentPath,
		Hint:    hint,
		Bank:    hint,
		EmailID: e.ID,
	}
}
