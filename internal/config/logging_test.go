package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupLogFileCreatesFile(t *testing.T) {
	dir := t.TempDir()

	f, err := SetupLogFile(dir, MaxLogFiles)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := os.Stat(f.Name()); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if filepath.Dir(f.Name()) != dir {
		t.Errorf("log file created in %s, want %s", filepath.Dir(f.Name()), dir)
	}
}

func TestSetupLogFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	f, err := SetupLogFile(dir, MaxLogFiles)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log directory not created: %v", err)
	}
}

func TestSetupLogFilePrunesOldest(t *testing.T) {
	dir := t.TempDir()

	// Timestamps well in the past so the new file sorts last
	old := []string{
		"fundscope-2020-01-01T00-00-01.log",
		"fundscope-2020-01-01T00-00-02.log",
		"fundscope-2020-01-01T00-00-03.log",
	}
	for _, name := range old {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	remaining, err := filepath.Glob(filepath.Join(dir, "fundscope-*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("got %d log files after cleanup, want 2: %v", len(remaining), remaining)
	}

	// The new file survives; the oldest two are gone
	if _, err := os.Stat(f.Name()); err != nil {
		t.Errorf("new log file was pruned: %v", err)
	}
	for _, name := range old[:2] {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been pruned", name)
		}
	}
}
