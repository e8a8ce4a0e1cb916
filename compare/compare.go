// Package compare computes line diffs between two document versions for
// display. Comparison is a pure read: nothing here mutates the document,
// the ledger, or the source descriptor.
package compare

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Comparison is the transient original/modified pair an open diff view shows.
// Closing the view simply discards it.
type Comparison struct {
	Label    string // where the original came from, e.g. "previous version"
	Original string
	Modified string
}

// ChangeType tags one line of a computed diff.
type ChangeType int

const (
	Equal ChangeType = iota
	Added
	Removed
)

// LineChange is one contiguous run of diff output.
type LineChange struct {
	Type ChangeType
	Text string
}

// Lines computes a line-level diff between the comparison's original and
// modified documents.
func (c *Comparison) Lines() []LineChange {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(c.Original, c.Modified)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changes := make([]LineChange, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			changes = append(changes, LineChange{Type: Added, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			changes = append(changes, LineChange{Type: Removed, Text: d.Text})
		default:
			changes = append(changes, LineChange{Type: Equal, Text: d.Text})
		}
	}
	return changes
}

// Stats counts added and removed lines across the diff.
func Stats(changes []LineChange) (added, removed int) {
	for _, c := range changes {
		n := countLines(c.Text)
		switch c.Type {
		case Added:
			added += n
		case Removed:
			removed += n
		}
	}
	return added, removed
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	if s[len(s)-1] != '\n' {
		n++
	}
	return n
}
