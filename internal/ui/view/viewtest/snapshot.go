package viewtest

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
)

// Plain strips styling from a rendered view and trims trailing blanks on
// every line so assertions do not depend on the terminal profile.
func Plain(rendered string) string {
	lines := strings.Split(ansi.Strip(rendered), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// AssertInOrder fails unless every part appears in the plain view, each
// one after the previous.
func AssertInOrder(t *testing.T, rendered string, parts ...string) {
	t.Helper()

	plain := Plain(rendered)
	rest := plain
	for _, part := range parts {
		idx := strings.Index(rest, part)
		if idx < 0 {
			t.Fatalf("expected %q (in order) in view:\n%s", part, plain)
		}
		rest = rest[idx+len(part):]
	}
}

// AssertLine fails unless some line of the plain view, with surrounding
// blanks trimmed, equals want.
func AssertLine(t *testing.T, rendered, want string) {
	t.Helper()

	plain := Plain(rendered)
	lines := strings.Split(plain, "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == want {
			return
		}
	}
	trimmed := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	t.Fatalf("line %q not found (-want +got):\n%s", want, cmp.Diff([]string{want}, trimmed))
}
