package observe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danieljhkim/gitmend/internal/state"
)

// parsedStatus is the distilled content of porcelain v2 output.
type parsedStatus struct {
	ref        state.RefInfo
	ahead      int
	behind     int
	clean      bool
	staged     bool
	conflicted []string
}

// parseStatus parses `git status --porcelain=v2 --branch` output.
func parseStatus(output string) (parsedStatus, error) {
	parsed := parsedStatus{clean: true}

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# branch.oid "):
			parsed.ref.Commit = strings.TrimPrefix(line, "# branch.oid ")
		case strings.HasPrefix(line, "# branch.head "):
			head := strings.TrimPrefix(line, "# branch.head ")
			if head != "(detached)" {
				parsed.ref.Branch = head
			}
		case strings.HasPrefix(line, "# branch.upstream "):
			parsed.ref.Upstream = strings.TrimPrefix(line, "# branch.upstream ")
		case strings.HasPrefix(line, "# branch.ab "):
			ahead, behind, err := parseAheadBehind(strings.TrimPrefix(line, "# branch.ab "))
			if err != nil {
				return parsedStatus{}, err
			}
			parsed.ahead, parsed.behind = ahead, behind
		case strings.HasPrefix(line, "# "):
			// Unknown header lines are allowed to pass through.
		case strings.HasPrefix(line, "1 ") || strings.HasPrefix(line, "2 "):
			xy, err := statusXY(line)
			if err != nil {
				return parsedStatus{}, err
			}
			if xy[0] != '.' {
				parsed.staged = true
			}
			if xy[1] != '.' {
				parsed.clean = false
			}
		case strings.HasPrefix(line, "u "):
			path, err := unmergedPath(line)
			if err != nil {
				return parsedStatus{}, err
			}
			parsed.conflicted = append(parsed.conflicted, path)
			parsed.clean = false
		case strings.HasPrefix(line, "? "):
			parsed.clean = false
		case strings.HasPrefix(line, "! "):
			// Ignored entries do not affect cleanliness.
		default:
			return parsedStatus{}, fmt.Errorf("unrecognized status line: %q", line)
		}
	}
	return parsed, nil
}

// parseAheadBehind parses the "+A -B" divergence counters.
func parseAheadBehind(s string) (int, int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "+") || !strings.HasPrefix(fields[1], "-") {
		return 0, 0, fmt.Errorf("malformed branch.ab entry: %q", s)
	}
	ahead, err := strconv.Atoi(fields[0][1:])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed ahead count: %q", s)
	}
	behind, err := strconv.Atoi(fields[1][1:])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed behind count: %q", s)
	}
	return ahead, behind, nil
}

// statusXY extracts the two-character XY field of a changed entry.
func statusXY(line string) (string, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 3 || len(fields[1]) != 2 {
		return "", fmt.Errorf("malformed changed entry: %q", line)
	}
	return fields[1], nil
}

// unmergedPath extracts the path of an unmerged ("u") entry. The path is
// the eleventh field and may contain spaces.
func unmergedPath(line string) (string, error) {
	fields := strings.SplitN(line, " ", 11)
	if len(fields) != 11 || fields[10] == "" {
		return "", fmt.Errorf("malformed unmerged entry: %q", line)
	}
	return fields[10], nil
}
