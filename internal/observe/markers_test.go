package observe

import (
	"testing"

	"github.com/danieljhkim/gitmend/internal/state"
)

func TestScanMarkersSupersetHunk(t *testing.T) {
	content := []byte(`package main

<<<<<<< HEAD
import "fmt"
import "os"
=======
import "fmt"
>>>>>>> origin/main
`)
	summary := ScanMarkers(content)
	if summary.Hunks != 1 || summary.TrivialHunks != 1 {
		t.Fatalf("summary = %+v, want one trivial hunk", summary)
	}
	if summary.PreferredSide != state.ResolveOurs {
		t.Errorf("PreferredSide = %q, want ours (the superset side)", summary.PreferredSide)
	}
}

func TestScanMarkersWhitespaceOnly(t *testing.T) {
	content := []byte(`<<<<<<< HEAD
x := compute( a, b )
=======
x := compute(a, b)
>>>>>>> origin/main
`)
	summary := ScanMarkers(content)
	if summary.TrivialHunks != 1 {
		t.Fatalf("whitespace-only divergence should be trivial: %+v", summary)
	}
	if summary.PreferredSide != state.ResolveTheirs {
		t.Errorf("PreferredSide = %q, want theirs for whitespace-only", summary.PreferredSide)
	}
}

func TestScanMarkersZdiff3Base(t *testing.T) {
	content := []byte(`<<<<<<< HEAD
left
||||||| base
original
=======
right
>>>>>>> origin/main
`)
	summary := ScanMarkers(content)
	if summary.Hunks != 1 {
		t.Fatalf("Hunks = %d, want 1", summary.Hunks)
	}
	if summary.TrivialHunks != 0 {
		t.Errorf("divergent sides should not be trivial: %+v", summary)
	}
}

func TestScanMarkersMixedHunks(t *testing.T) {
	content := []byte(`<<<<<<< HEAD
shared
extra
=======
shared
>>>>>>> origin/main
middle
<<<<<<< HEAD
alpha
=======
beta
>>>>>>> origin/main
`)
	summary := ScanMarkers(content)
	if summary.Hunks != 2 || summary.TrivialHunks != 1 {
		t.Errorf("summary = %+v, want 2 hunks with 1 trivial", summary)
	}
	if got := summary.Triviality(); got != 0.5 {
		t.Errorf("Triviality() = %v, want 0.5", got)
	}
}

func TestScanMarkersNoMarkers(t *testing.T) {
	summary := ScanMarkers([]byte("plain content\nno conflict here\n"))
	if summary.Hunks != 0 || summary.Triviality() != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestScanMarkersIgnoresBareSeparator(t *testing.T) {
	// A ======= outside a hunk (markdown underline) is not a marker.
	summary := ScanMarkers([]byte("Title\n=======\nbody\n"))
	if summary.Hunks != 0 {
		t.Errorf("Hunks = %d, want 0", summary.Hunks)
	}
}

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path    string
		content []byte
		want    state.ConflictType
	}{
		{"src/main.go", nil, state.ConflictText},
		{"config.yaml", nil, state.ConflictStructured},
		{"package.json", nil, state.ConflictStructured},
		{"Cargo.lock", nil, state.ConflictLockfile},
		{"package-lock.json", nil, state.ConflictLockfile},
		{"pnpm-lock.yaml", nil, state.ConflictLockfile},
		{"go.sum", nil, state.ConflictLockfile},
		{"assets/logo.png", []byte{0x89, 0x50, 0x00, 0x47}, state.ConflictBinary},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ClassifyPath(tt.path, tt.content); got != tt.want {
				t.Errorf("ClassifyPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
