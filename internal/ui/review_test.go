package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tclaudel/downkeep/internal/dispose"
	"github.com/tclaudel/downkeep/internal/history"
	"github.com/tclaudel/downkeep/internal/reconcile"
)

func testCandidates() []Candidate {
	return []Candidate{
		{
			Entry:  reconcile.Entry{Record: history.Record{Path: "/d/loved.pdf", UseCount: 5}},
			Action: dispose.ActionArchive,
		},
		{
			Entry:  reconcile.Entry{Record: history.Record{Path: "/d/rare.iso", UseCount: 1}},
			Action: dispose.ActionTrash,
		},
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func update(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestReviewConfirmAppliesAll(t *testing.T) {
	m := update(NewModel(testCandidates()), "enter")

	if !m.Confirmed() {
		t.Fatal("enter must confirm")
	}
	if got := len(m.Approved()); got != 2 {
		t.Errorf("approved = %d, want 2", got)
	}
}

func TestReviewToggleSkips(t *testing.T) {
	m := update(NewModel(testCandidates()), " ", "enter")

	approved := m.Approved()
	if len(approved) != 1 {
		t.Fatalf("approved = %d, want 1", len(approved))
	}
	if approved[0].Entry.Record.Path != "/d/rare.iso" {
		t.Errorf("wrong candidate skipped: %+v", approved)
	}
}

func TestReviewToggleTwiceRestores(t *testing.T) {
	m := update(NewModel(testCandidates()), " ", " ", "enter")

	if got := len(m.Approved()); got != 2 {
		t.Errorf("approved = %d, want 2", got)
	}
}

func TestReviewCursorMoves(t *testing.T) {
	m := update(NewModel(testCandidates()), "down", " ", "enter")

	approved := m.Approved()
	if len(approved) != 1 || approved[0].Entry.Record.Path != "/d/loved.pdf" {
		t.Errorf("expected second candidate skipped, got %+v", approved)
	}
}

func TestReviewQuitDoesNotConfirm(t *testing.T) {
	m := update(NewModel(testCandidates()), "q")

	if m.Confirmed() {
		t.Error("q must cancel, not confirm")
	}
}

func TestReviewViewListsCandidates(t *testing.T) {
	view := NewModel(testCandidates()).View()

	for _, want := range []string{"loved.pdf", "rare.iso", "archive", "trash"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestReviewViewEmpty(t *testing.T) {
	view := NewModel(nil).View()
	if !strings.Contains(view, "Nothing is stale") {
		t.Errorf("unexpected empty view:\n%s", view)
	}
}
