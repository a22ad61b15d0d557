package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiffPrintsPatch(t *testing.T) {
	tmp := chtemp(t)
	if err := os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "one\nthree\n", "diff", "a.txt")
	if err != nil {
		t.Fatalf("diff: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "-two") || !strings.Contains(out, "+three") {
		t.Errorf("diff output missing changes:\n%s", out)
	}
}

func TestDiffNoChanges(t *testing.T) {
	tmp := chtemp(t)
	if err := os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("same\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "same\n", "diff", "a.txt")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "No changes.") {
		t.Errorf("output = %q, want the no-changes message", out)
	}
}

func TestDiffMissingFileTreatsAsEmpty(t *testing.T) {
	chtemp(t)

	out, err := executeCommand(rootCmd, "fresh\n", "diff", "absent.txt")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "+fresh") {
		t.Errorf("output = %q, want an all-additions diff", out)
	}
}
