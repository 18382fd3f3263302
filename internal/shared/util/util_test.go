package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeExtension(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dotted", input: ".js", expected: ".js"},
		{name: "Bare", input: "mjs", expected: ".mjs"},
		{name: "Upper", input: " .TSX ", expected: ".tsx"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeExtension(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	got := SortedStringKeys(map[string]int{"tsx": 1, "javascript": 2, "typescript": 3})
	want := []string{"javascript", "tsx", "typescript"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "out", "graphs", "dependencyGraph.dot")
	if err := WriteFileWithDirs(target, []byte("digraph DependencyGraph {\n}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "digraph DependencyGraph {\n}\n" {
		t.Fatalf("unexpected content %q", string(data))
	}
}

func TestWriteFileWithDirsFailsOnFileParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileWithDirs(filepath.Join(blocker, "child.dot"), []byte("x"), 0o644); err == nil {
		t.Fatal("expected error when parent path is a regular file")
	}
}
