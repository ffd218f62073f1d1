package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/rip/internal/exitcodes"
)

func TestBuryListResurrect(t *testing.T) {
	env := setupTestEnv(t)
	report := env.file(t, "report.txt", "abcd")

	if _, errOut, code := runCLI(t, "", report); code != exitcodes.Success {
		t.Fatalf("bury exit code = %d, stderr %q", code, errOut)
	}
	if _, err := os.Lstat(report); !os.IsNotExist(err) {
		t.Fatalf("report.txt should be buried, stat err = %v", err)
	}

	out, _, code := runCLI(t, "", "list")
	if code != exitcodes.Success {
		t.Fatalf("list exit code = %d", code)
	}
	if !contains(out, "report.txt") || !contains(out, " F (") || !contains(out, report) {
		t.Errorf("list output = %q", out)
	}

	out, _, code = runCLI(t, "", "resurrect", "report", "-y")
	if code != exitcodes.Success {
		t.Fatalf("resurrect exit code = %d", code)
	}
	if !contains(out, "Restored 1 item(s).") {
		t.Errorf("resurrect output = %q", out)
	}
	data, err := os.ReadFile(report)
	if err != nil || string(data) != "abcd" {
		t.Errorf("restored content = %q, %v", data, err)
	}

	out, _, _ = runCLI(t, "", "ls")
	if !contains(out, "Graveyard is empty.") {
		t.Errorf("list after restore = %q", out)
	}
}

func TestListJSON(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "a.txt", "a"))

	out, _, code := runCLI(t, "", "list", "--json")
	if code != exitcodes.Success {
		t.Fatalf("exit code = %d", code)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	for _, key := range []string{"id", "basename", "original_path", "trashed_path", "deleted_at", "kind", "age"} {
		if _, ok := items[0][key]; !ok {
			t.Errorf("JSON item missing %q: %v", key, items[0])
		}
	}
	if items[0]["kind"] != "File" {
		t.Errorf("kind = %v, want File", items[0]["kind"])
	}
}

func TestBury_Forbidden(t *testing.T) {
	env := setupTestEnv(t)
	keep := env.file(t, "keep.txt", "k")

	_, errOut, code := runCLI(t, "", keep, env.graveyard())
	if code != exitcodes.SafetyViolation {
		t.Errorf("exit code = %d, want %d", code, exitcodes.SafetyViolation)
	}
	if !contains(errOut, "denied") {
		t.Errorf("stderr = %q", errOut)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("keep.txt must not move when the batch is denied: %v", err)
	}
}

func TestBury_MissingPath(t *testing.T) {
	env := setupTestEnv(t)

	_, errOut, code := runCLI(t, "", filepath.Join(env.work, "nope"))
	if code != exitcodes.RuntimeError {
		t.Errorf("exit code = %d, want %d", code, exitcodes.RuntimeError)
	}
	if !contains(errOut, "nope") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestResurrect_SelectionMessages(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "one/log.txt", "1"), env.file(t, "two/log.txt", "2"))

	out, _, code := runCLI(t, "", "resurrect", "zzz")
	if code != exitcodes.Success {
		t.Errorf("no-match exit code = %d", code)
	}
	if !contains(out, "No graveyard entry matches 'zzz'.") {
		t.Errorf("no-match output = %q", out)
	}

	out, _, code = runCLI(t, "", "r", "log")
	if code != exitcodes.Success {
		t.Errorf("ambiguous exit code = %d", code)
	}
	if !contains(out, "Multiple matches") || strings.Count(out, "log.txt") != 2 {
		t.Errorf("ambiguous output = %q", out)
	}
}

func TestResurrect_DryRun(t *testing.T) {
	env := setupTestEnv(t)
	path := env.file(t, "dry.txt", "d")
	runCLI(t, "", path)

	out, _, code := runCLI(t, "", "resurrect", "dry", "--dry-run")
	if code != exitcodes.Success {
		t.Fatalf("exit code = %d", code)
	}
	if !contains(out, "About to restore ALL graveyard items: 1 item(s).") || !contains(out, "--dry-run: nothing restored.") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("dry run must not restore: %v", err)
	}
}

func TestResurrect_TargetExists(t *testing.T) {
	env := setupTestEnv(t)
	path := env.file(t, "busy.txt", "old")
	runCLI(t, "", path)
	env.file(t, "busy.txt", "new")

	out, _, code := runCLI(t, "", "resurrect", "busy", "-y")
	if code != exitcodes.Success {
		t.Errorf("exit code = %d, want success for a conflict", code)
	}
	if !contains(out, "target already exists") {
		t.Errorf("output = %q", out)
	}
}

func TestPrune_SingleConfirm(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "a.txt", "a"), env.file(t, "b.txt", "b"))

	out, _, code := runCLI(t, "n\n", "prune", "a.txt")
	if code != exitcodes.Success {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"About to remove 1 item(s) (~0.00 MiB).", "Confirm (y/N): ", "Aborted."} {
		if !contains(out, want) {
			t.Errorf("declined output missing %q: %q", want, out)
		}
	}

	out, _, _ = runCLI(t, "y\n", "p", "a.txt")
	if !contains(out, "Removed 1 item(s).") {
		t.Errorf("accepted output = %q", out)
	}

	out, _, _ = runCLI(t, "", "list")
	if contains(out, "a.txt") || !contains(out, "b.txt") {
		t.Errorf("list after prune = %q", out)
	}
}

func TestPrune_EverythingNeedsToken(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "a.txt", "a"), env.file(t, "b.txt", "b"))
	stray := filepath.Join(env.graveyard(), "stray")
	if err := os.WriteFile(stray, []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, _ := runCLI(t, "y\n", "prune")
	if !contains(out, "About to remove ALL graveyard items: 2 items") || !contains(out, "Type YES to confirm: ") || !contains(out, "Aborted.") {
		t.Errorf("output = %q", out)
	}

	out, _, code := runCLI(t, "YES\n", "prune")
	if code != exitcodes.Success {
		t.Fatalf("exit code = %d", code)
	}
	if !contains(out, "Removed 2 item(s).") || !contains(out, "Swept 1 stray path") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Lstat(stray); !os.IsNotExist(err) {
		t.Errorf("stray file should be swept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.graveyard(), ".journal")); err != nil {
		t.Errorf("journal must survive a full prune: %v", err)
	}
}

func TestHistory(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "h.txt", "hist"))

	out, _, code := runCLI(t, "", "history", "--limit", "5")
	if code != exitcodes.Success {
		t.Fatalf("exit code = %d", code)
	}
	if !contains(out, "bury") || !contains(out, "h.txt") {
		t.Errorf("history output = %q", out)
	}

	t.Setenv("RIP_HISTORY", "false")
	out, _, _ = runCLI(t, "", "history")
	if !contains(out, "History is disabled.") {
		t.Errorf("disabled history output = %q", out)
	}
}

func TestDoctor(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "d.txt", "d"))

	out, _, code := runCLI(t, "", "doctor")
	if code != exitcodes.Success || !contains(out, "Graveyard is consistent.") {
		t.Errorf("healthy doctor: code %d, output %q", code, out)
	}

	if err := os.WriteFile(filepath.Join(env.graveyard(), "half.copying"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	out, errOut, code := runCLI(t, "", "doctor")
	if code != exitcodes.Failure {
		t.Errorf("exit code = %d, want %d", code, exitcodes.Failure)
	}
	if !contains(out, "half.copying") || errOut != "" {
		t.Errorf("doctor output = %q, stderr %q", out, errOut)
	}
}

func TestInvalidSettings(t *testing.T) {
	setupTestEnv(t)
	t.Setenv("RIP_PICKER", "bogus")

	_, errOut, code := runCLI(t, "", "list")
	if code != exitcodes.InvalidConfig {
		t.Errorf("exit code = %d, want %d", code, exitcodes.InvalidConfig)
	}
	if !contains(errOut, "invalid configuration") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestCompletionCandidates(t *testing.T) {
	env := setupTestEnv(t)
	runCLI(t, "", env.file(t, "report.txt", "r"), env.file(t, "notes.md", "n"))

	out, _, _ := runCLI(t, "", "__complete", "resurrect", "rep")
	if !contains(out, "report.txt") || contains(out, "notes.md") {
		t.Errorf("completion output = %q", out)
	}
}

func TestCompletionScript(t *testing.T) {
	setupTestEnv(t)

	out, _, code := runCLI(t, "", "completion", "bash")
	if code != exitcodes.Success || !contains(out, "rip") {
		t.Errorf("bash completion: code %d, %d bytes", code, len(out))
	}
}
