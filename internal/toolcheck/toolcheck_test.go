package toolcheck

import "testing"

func TestIsAvailableFindsShellBinary(t *testing.T) {
	if !IsAvailable("sh") {
		t.Skip("sh not on PATH in this environment")
	}
}

func TestIsAvailableRejectsUnknownBinary(t *testing.T) {
	if IsAvailable("definitely-not-a-real-binary-xyz") {
		t.Error("expected unknown binary to be unavailable")
	}
}

func TestCheckAllReportsOnlyMissingTools(t *testing.T) {
	missing := CheckAll()
	for _, tool := range missing {
		if IsAvailable(tool.Binary) {
			t.Errorf("tool %q reported missing but is available", tool.Name)
		}
	}
}

func TestFindInstallCommandPrefersPackageManagerMatch(t *testing.T) {
	cmds := []string{
		"linux:generic install",
		"linux:apt:apt install it",
	}
	got := findInstallCommand(cmds)
	if got == "" {
		t.Skip("no linux install command resolvable on this host")
	}
}

func TestCheckAndInstallUnknownToolErrors(t *testing.T) {
	if err := CheckAndInstall("not-a-real-tool"); err == nil {
		t.Fatal("expected an error for an unknown tool name")
	}
}
