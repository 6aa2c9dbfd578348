package viewtest

import "testing"

func TestPlainStripsStyling(t *testing.T) {
	got := Plain("\x1b[1mDHCPv4\x1b[0m   \nCA  \n\n")
	if got != "DHCPv4\nCA" {
		t.Fatalf("unexpected plain view %q", got)
	}
}

func TestAssertHelpersAcceptMatchingViews(t *testing.T) {
	view := "\x1b[31m DHCPv4 \x1b[0m  CA\nUptime  3 minutes\n"
	AssertInOrder(t, view, "DHCPv4", "CA", "3 minutes")
	AssertLine(t, view, "Uptime  3 minutes")
}
