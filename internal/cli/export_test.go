package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReport_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	err := writeReport(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "code,name\n")
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "code,name\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriteReport_RemovesPartialFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	boom := errors.New("boom")
	err := writeReport(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected partial file to be removed, stat err = %v", err)
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("", "plan-PLAN-001.xlsx"); got != "plan-PLAN-001.xlsx" {
		t.Errorf("expected default name, got %q", got)
	}
	if got := orDefault("mine.xlsx", "plan-PLAN-001.xlsx"); got != "mine.xlsx" {
		t.Errorf("expected explicit output, got %q", got)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	if _, err := readInput(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
