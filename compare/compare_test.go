package compare

import (
	"strings"
	"testing"
)

func TestLinesIdenticalDocuments(t *testing.T) {
	c := &Comparison{Original: "<html>\nA\n</html>\n", Modified: "<html>\nA\n</html>\n"}

	changes := c.Lines()
	for _, ch := range changes {
		if ch.Type != Equal {
			t.Errorf("Identical documents must produce only Equal runs, got %v %q", ch.Type, ch.Text)
		}
	}
	added, removed := Stats(changes)
	if added != 0 || removed != 0 {
		t.Errorf("Expected 0/0 stats, got +%d/-%d", added, removed)
	}
}

func TestLinesDetectsChangedLine(t *testing.T) {
	c := &Comparison{
		Original: "line1\nline2\nline3\n",
		Modified: "line1\nline2 changed\nline3\n",
	}

	changes := c.Lines()
	var sawAdd, sawRemove bool
	for _, ch := range changes {
		switch ch.Type {
		case Added:
			sawAdd = true
			if !strings.Contains(ch.Text, "line2 changed") {
				t.Errorf("Expected added run to carry the new line, got %q", ch.Text)
			}
		case Removed:
			sawRemove = true
			if !strings.Contains(ch.Text, "line2") {
				t.Errorf("Expected removed run to carry the old line, got %q", ch.Text)
			}
		}
	}
	if !sawAdd || !sawRemove {
		t.Errorf("Expected both an added and a removed run, got %+v", changes)
	}

	added, removed := Stats(changes)
	if added != 1 || removed != 1 {
		t.Errorf("Expected +1/-1, got +%d/-%d", added, removed)
	}
}

func TestStatsCountsMultiLineRuns(t *testing.T) {
	changes := []LineChange{
		{Type: Added, Text: "a\nb\nc\n"},
		{Type: Removed, Text: "z\n"},
		{Type: Equal, Text: "same\n"},
	}
	added, removed := Stats(changes)
	if added != 3 || removed != 1 {
		t.Errorf("Expected +3/-1, got +%d/-%d", added, removed)
	}
}
