package allocator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNextIsMonotonic(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		id, err := a.Next()
		if err != nil {
			t.Fatalf("Next() failed on call %d: %v", i, err)
		}
		want := map[int]string{0: "0", 1: "1", 2: "2", 3: "3", 4: "4"}[i]
		if id != want {
			t.Errorf("Next() = %q, want %q", id, want)
		}
	}
}

func TestCounterSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Next(); err != nil {
		t.Fatal(err)
	}

	// A fresh allocator over the same directory continues the sequence.
	b, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	id, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}
	if id != "2" {
		t.Errorf("Next() after restart = %q, want %q", id, "2")
	}
}

func TestCorruptCounterFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, counterFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Next(); err == nil {
		t.Error("Next() on corrupt counter file should fail")
	}
}
