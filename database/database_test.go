package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emwave/emwave/database/data_model"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "runs.db")
}

func TestRecordAndListRuns(t *testing.T) {
	db, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("Open error: %s", err)
	}
	defer Close(db)

	entries := []*data_model.RunEntry{
		{InputFile: "a.in", Title: "a", ModelRun: 1, TotalRuns: 2, OutputFile: "a1.out", Iterations: 10, Dt: 1e-12, Elapsed: 0.5},
		{InputFile: "a.in", Title: "a", ModelRun: 2, TotalRuns: 2, OutputFile: "a2.out", Iterations: 10, Dt: 1e-12, Elapsed: 0.6},
		{InputFile: "b.in", Title: "b", ModelRun: 1, TotalRuns: 1, OutputFile: "b.out", Iterations: 20, Dt: 2e-12, Elapsed: 1.5},
	}
	for _, e := range entries {
		if err := RecordRun(db, e); err != nil {
			t.Fatalf("RecordRun error: %s", err)
		}
	}

	all, err := ListRuns(db, "")
	if err != nil {
		t.Fatalf("ListRuns error: %s", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d entries, want 3", len(all))
	}

	forA, err := ListRuns(db, "a.in")
	if err != nil {
		t.Fatalf("ListRuns error: %s", err)
	}
	if len(forA) != 2 {
		t.Errorf("got %d entries for a.in, want 2", len(forA))
	}

	got, err := RunByID(db, forA[0].ID)
	if err != nil {
		t.Fatalf("RunByID error: %s", err)
	}
	if got.InputFile != "a.in" {
		t.Errorf("entry input = %q", got.InputFile)
	}

	if _, err := RunByID(db, 9999); err == nil {
		t.Error("expected error for missing entry")
	}
}

func TestRecordRunReplacesSameOutput(t *testing.T) {
	db, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("Open error: %s", err)
	}
	defer Close(db)

	first := &data_model.RunEntry{InputFile: "a.in", OutputFile: "a.out", Iterations: 10}
	second := &data_model.RunEntry{InputFile: "a.in", OutputFile: "a.out", Iterations: 20}
	if err := RecordRun(db, first); err != nil {
		t.Fatal(err)
	}
	if err := RecordRun(db, second); err != nil {
		t.Fatal(err)
	}

	entries, err := ListRuns(db, "a.in")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Iterations != 20 {
		t.Errorf("iterations = %d, want the replacing entry's 20", entries[0].Iterations)
	}
}

func TestRecordRunReportsInsertFailure(t *testing.T) {
	db, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("Open error: %s", err)
	}

	// Closing the underlying connection makes every insert fail.
	if err := Close(db); err != nil {
		t.Fatal(err)
	}

	entry := &data_model.RunEntry{InputFile: "a.in", OutputFile: "a.out"}
	if err := RecordRun(db, entry); err == nil {
		t.Error("RecordRun must report the failed insert")
	}
}

func TestExportCSV(t *testing.T) {
	dbPath := openTestDB(t)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open error: %s", err)
	}
	defer Close(db)

	entry := &data_model.RunEntry{
		InputFile: "a.in", Title: "model a", ModelRun: 1, TotalRuns: 1,
		OutputFile: "a.out", Iterations: 10, Dt: 1e-12, Elapsed: 0.5,
	}
	if err := RecordRun(db, entry); err != nil {
		t.Fatal(err)
	}

	csvPath := filepath.Join(filepath.Dir(dbPath), "runs.csv")
	if err := ExportCSV(db, "", csvPath); err != nil {
		t.Fatalf("ExportCSV error: %s", err)
	}

	content, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want header plus one row:\n%s", len(lines), content)
	}
	if !strings.Contains(lines[1], "a.out") {
		t.Errorf("data row missing output file: %s", lines[1])
	}
}
