// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"os/exec"
	"testing"

	"grimm.is/fwtranslate/internal/brand"
)

// RequireVM skips the test unless <PREFIX>_VM_TEST is set. Tests that touch
// the host's firewall must only run inside a disposable VM.
func RequireVM(t *testing.T) {
	t.Helper()
	if os.Getenv(brand.ConfigEnvPrefix+"_VM_TEST") == "" {
		t.Skipf("Skipping test: requires %s_VM_TEST environment", brand.ConfigEnvPrefix)
	}
}

// RequireIPTables skips the test unless it runs as root in a VM with the
// iptables binary available.
func RequireIPTables(t *testing.T) {
	t.Helper()
	RequireVM(t)
	if os.Geteuid() != 0 {
		t.Skip("Skipping test: requires root")
	}
	if _, err := exec.LookPath("iptables"); err != nil {
		t.Skip("Skipping test: iptables not found")
	}
}
