package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveDatabaseFilesDeletesWALSidecars(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "quiz.db")

	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	if err := removeDatabaseFiles(dbPath); err != nil {
		t.Fatalf("removeDatabaseFiles: %v", err)
	}
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}
}

func TestRemoveDatabaseFilesWithoutSidecars(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "quiz.db")
	if err := os.WriteFile(dbPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := removeDatabaseFiles(dbPath); err != nil {
		t.Fatalf("removeDatabaseFiles: %v", err)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("database still exists")
	}
}
