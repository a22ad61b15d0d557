package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/report"
)

// executeCommand runs a cobra command with the given args and input,
// capturing combined output.
func executeCommand(root *cobra.Command, input string, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// chtemp points HOME and XDG_DATA_HOME at temp dirs and chdirs into a fresh
// working directory, so commands never touch real state.
func chtemp(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
	return tmp
}

func TestApplyCreatesFile(t *testing.T) {
	tmp := chtemp(t)

	out, err := executeCommand(rootCmd, "hello\nworld\n", "apply", "greeting.txt", "--plain")
	if err != nil {
		t.Fatalf("apply: %v\noutput: %s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(tmp, "greeting.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\nworld\n" {
		t.Errorf("file content = %q", data)
	}
	if !strings.Contains(out, "_Saved without user edits._") {
		t.Errorf("report missing the no-edits marker:\n%s", out)
	}
}

func TestApplyModifiesFile(t *testing.T) {
	tmp := chtemp(t)
	if err := os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "new\n", "apply", "a.txt", "--plain")
	if err != nil {
		t.Fatalf("apply: %v\noutput: %s", err, out)
	}

	data, _ := os.ReadFile(filepath.Join(tmp, "a.txt"))
	if string(data) != "new\n" {
		t.Errorf("file content = %q", data)
	}
	if !strings.Contains(out, "# Edited a.txt") {
		t.Errorf("report title wrong:\n%s", out)
	}
}

func TestApplyJSONFormat(t *testing.T) {
	chtemp(t)

	out, err := executeCommand(rootCmd, "x\n", "apply", "x.txt", "--plain", "--format", "json")
	if err != nil {
		t.Fatalf("apply: %v\noutput: %s", err, out)
	}
	t.Cleanup(func() { applyFormat = "" })

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if rep.Path != "x.txt" {
		t.Errorf("Path = %q", rep.Path)
	}
	if rep.Result.FinalContent != "x\n" {
		t.Errorf("FinalContent = %q", rep.Result.FinalContent)
	}
}

func TestApplySmallChunks(t *testing.T) {
	tmp := chtemp(t)

	content := "alpha\nbeta\ngamma\n"
	out, err := executeCommand(rootCmd, content, "apply", "chunks.txt", "--plain", "--chunk-size", "3")
	if err != nil {
		t.Fatalf("apply: %v\noutput: %s", err, out)
	}
	t.Cleanup(func() { applyChunkSize = 4096 })

	data, _ := os.ReadFile(filepath.Join(tmp, "chunks.txt"))
	if string(data) != content {
		t.Errorf("file content = %q, want it assembled across chunks", data)
	}
}

func TestPreviewLeavesFileUntouched(t *testing.T) {
	tmp := chtemp(t)
	if err := os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "new\n", "preview", "a.txt")
	if err != nil {
		t.Fatalf("preview: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "+new") || !strings.Contains(out, "-old") {
		t.Errorf("diff missing expected lines:\n%s", out)
	}

	data, _ := os.ReadFile(filepath.Join(tmp, "a.txt"))
	if string(data) != "old\n" {
		t.Errorf("file content = %q, preview must revert", data)
	}
}

func TestPreviewCreateRemovesFile(t *testing.T) {
	tmp := chtemp(t)

	out, err := executeCommand(rootCmd, "draft\n", "preview", "draft.txt")
	if err != nil {
		t.Fatalf("preview: %v\noutput: %s", err, out)
	}
	if _, err := os.Stat(filepath.Join(tmp, "draft.txt")); !os.IsNotExist(err) {
		t.Error("previewed file left behind")
	}
}
