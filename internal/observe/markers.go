package observe

import (
	"bytes"
	"path"
	"strings"

	"github.com/danieljhkim/gitmend/internal/state"
)

// MarkerSummary is the result of scanning a conflicted file's markers.
type MarkerSummary struct {
	// Hunks is the number of conflict hunks found.
	Hunks int

	// TrivialHunks counts hunks where one side strictly contains the
	// other or the divergence is whitespace-only.
	TrivialHunks int

	// PreferredSide is the side trivial resolution would keep: the
	// superset side, or theirs for whitespace-only divergence. Empty
	// when no hunk was trivial.
	PreferredSide state.Resolution
}

// Triviality returns the trivial fraction, 0 when no hunks were found.
func (m MarkerSummary) Triviality() float64 {
	if m.Hunks == 0 {
		return 0
	}
	return float64(m.TrivialHunks) / float64(m.Hunks)
}

// ScanMarkers parses conflict markers (merge, diff3, and zdiff3 styles)
// out of file content and classifies each hunk.
func ScanMarkers(content []byte) MarkerSummary {
	lines := strings.Split(string(content), "\n")
	summary := MarkerSummary{}

	var ours, theirs []string
	section := "" // "", ours, base, theirs
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "<<<<<<<"):
			section = "ours"
			ours, theirs = nil, nil
		case strings.HasPrefix(line, "|||||||") && section == "ours":
			section = "base"
		case line == "=======" && (section == "ours" || section == "base"):
			section = "theirs"
		case strings.HasPrefix(line, ">>>>>>>") && section == "theirs":
			summary.Hunks++
			if side, trivial := classifyHunk(ours, theirs); trivial {
				summary.TrivialHunks++
				if summary.PreferredSide == "" {
					summary.PreferredSide = side
				}
			}
			section = ""
		default:
			switch section {
			case "ours":
				ours = append(ours, line)
			case "theirs":
				theirs = append(theirs, line)
			}
		}
	}
	return summary
}

// classifyHunk reports whether the hunk is trivially resolvable and which
// side to keep.
func classifyHunk(ours, theirs []string) (state.Resolution, bool) {
	if whitespaceEqual(ours, theirs) {
		// Incoming formatting wins for whitespace-only divergence.
		return state.ResolveTheirs, true
	}
	if containsInOrder(ours, theirs) {
		return state.ResolveOurs, true
	}
	if containsInOrder(theirs, ours) {
		return state.ResolveTheirs, true
	}
	return "", false
}

// whitespaceEqual reports both sides equal after stripping whitespace.
func whitespaceEqual(a, b []string) bool {
	return squash(a) == squash(b)
}

func squash(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		for _, r := range line {
			if r != ' ' && r != '\t' && r != '\r' {
				b.WriteRune(r)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// containsInOrder reports whether haystack contains every needle line in
// order, making haystack a strict-or-equal superset.
func containsInOrder(haystack, needle []string) bool {
	if len(needle) > len(haystack) {
		return false
	}
	i := 0
	for _, line := range haystack {
		if i < len(needle) && line == needle[i] {
			i++
		}
	}
	return i == len(needle)
}

// ClassifyPath maps a path and its content to a conflict content type.
func ClassifyPath(p string, content []byte) state.ConflictType {
	if bytes.IndexByte(content, 0) >= 0 {
		return state.ConflictBinary
	}
	base := strings.ToLower(path.Base(p))
	switch {
	case strings.HasSuffix(base, ".lock"),
		strings.HasSuffix(base, "-lock.json"),
		strings.HasSuffix(base, "-lock.yaml"),
		base == "go.sum":
		return state.ConflictLockfile
	}
	switch path.Ext(base) {
	case ".json", ".yaml", ".yml", ".toml", ".xml":
		return state.ConflictStructured
	}
	return state.ConflictText
}
