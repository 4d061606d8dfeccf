package bootctl

import (
	"os/exec"
	"testing"
)

func TestProcManagerKillAll(t *testing.T) {
	pm := NewProcManager()
	// empty manager is a no-op
	if err := pm.KillAll(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// unstarted commands (nil Process) are skipped
	pm.Add(exec.Command("true"))
	pm.Add(nil)
	if err := pm.KillAll(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// KillAll drains the tracked list
	if err := pm.KillAll(); err != nil {
		t.Fatalf("unexpected err on drained manager: %v", err)
	}
}
