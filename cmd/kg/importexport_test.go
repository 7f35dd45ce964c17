package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestExportRejectsPathEscapingBase(t *testing.T) {
	data := filepath.Join(t.TempDir(), "kg.jsonl")
	base := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--data", data, "--base", base, "export", "--out", "../../etc/passwd"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected an error for an --out path escaping --base")
	}
}

func TestExportThenImportRoundTripsWithinBase(t *testing.T) {
	data := filepath.Join(t.TempDir(), "kg.jsonl")
	base := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--data", data, "entity", "create", "Alice", "--type", "person"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rootCmd.SetArgs([]string{"--data", data, "--base", base, "export", "--out", "snapshot.json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data2 := filepath.Join(t.TempDir(), "kg2.jsonl")
	rootCmd.SetArgs([]string{"--data", data2, "--base", base, "import", "--in", "snapshot.json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("import failed: %v", err)
	}
}

func TestBackupRejectsDirEscapingBase(t *testing.T) {
	data := filepath.Join(t.TempDir(), "kg.jsonl")
	base := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--data", data, "--base", base, "backup", "../outside"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected an error for a backup dir escaping --base")
	}
}
