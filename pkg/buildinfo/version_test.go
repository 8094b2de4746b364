package buildinfo

import (
	"strings"
	"testing"
)

func TestStrings(t *testing.T) {
	Version, Commit = "v1.2.3", "abc123"
	defer func() { Version, Commit = "dev", "none" }()

	if got := Short(); got != "plasmap v1.2.3 (abc123)" {
		t.Errorf("Short() = %q", got)
	}
	if !strings.Contains(String(), "commit: abc123") {
		t.Errorf("String() = %q, want the commit", String())
	}
	if !strings.HasPrefix(Template(), "{{.Name}} v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}
