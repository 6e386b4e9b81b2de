package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/billfold/billfold/pkg/models"
)

func writeHints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hints.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSubjectHints(t *testing.T) {
	hints, err := LoadSubjectHints(writeHints(t, `
- subject: "HDFC Bank.*Statement"
  hint: hdfc
- subject: "AU Bank"
  hint: au
`))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		subject string
		want    string
	}{
		{"HDFC Bank : Your Credit Card Statement", "hdfc"},
		{"hdfc bank e-statement", "hdfc"}, // case-insensitive
		{"AU Bank statement for August", "au"},
		{"Your electricity bill", ""},
	}
	for _, c := range cases {
		if got := hints.Match(c.subject); got != c.want {
			t.Errorf("Match(%q) = %q, want %q", c.subject, got, c.want)
		}
	}
}

func TestSubjectHintsMissingFile(t *testing.T) {
	hints, err := LoadSubjectHints(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := hints.Match("HDFC Bank statement"); got != "" {
		t.Fatalf("Match on empty mapping = %q", got)
	}
}

func TestSubjectHintsRejectsBrokenPattern(t *testing.T) {
	if _, err := LoadSubjectHints(writeHints(t, "- subject: \"](\" \n  hint: hdfc\n")); err == nil {
		t.Fatal("broken pattern must fail loading")
	}
}

func TestDocumentFromEmail(t *testing.T) {
	hints, err := LoadSubjectHints(writeHints(t, "- subject: SBI Card\n  hint: sbi\n"))
	if err != nil {
		t.Fatal(err)
	}

	doc := hints.Document(models.Email{
		ID:             "msg-42",
		Subject:        "SBI Card Monthly Statement",
		AttachmentPath: "/mail/attachments/stmt.pdf",
	})
	if doc.Hint != "sbi" || doc.Bank != "sbi" || doc.EmailID != "msg-42" || doc.Path != "/mail/attachments/stmt.pdf" {
		t.Fatalf("doc = %+v", doc)
	}

	// An explicit hint on the record wins over the subject mapping.
	doc = hints.Document(models.Email{Subject: "SBI Card Monthly Statement", ParserHint: "icici"})
	if doc.Hint != "icici" {
		t.Fatalf("hint = %q", doc.Hint)
	}
}
