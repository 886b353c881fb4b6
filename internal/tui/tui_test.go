package tui

import (
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
)

type mark struct{ player, slot int }

type fakeController struct {
	mu         sync.Mutex
	marks      []mark
	terminated bool
}

func (f *fakeController) MarkSlot(player, slot int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks = append(f.marks, mark{player, slot})
	return true
}

func (f *fakeController) Terminate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = true
}

var testKeys = map[int][]string{
	0: {"q", "w", "e", "r", "a", "s", "d", "f", "z", "x", "c", "v"},
	1: {"u", "i", "o", "p", "j", "k", "l", ";", "m", ",", ".", "/"},
}

func newTestModel(t *testing.T, testMode bool) (*TUIModel, *display.Board, *fakeController) {
	t.Helper()
	board := display.NewBoard(12)
	ctrl := &fakeController{}
	m := NewTUIModel(Options{
		Board:      board,
		Controller: ctrl,
		Rules:      cards.Classic(),
		Names:      []string{"alice", "bob", "bot1"},
		Keys:       testKeys,
		Columns:    4,
		Logger:     log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
		TestMode:   testMode,
	})
	return m, board, ctrl
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTUITestMode(t *testing.T) {
	t.Run("test mode captures log entries", func(t *testing.T) {
		m, _, _ := newTestModel(t, true)
		assert.True(t, m.IsTestMode())
		assert.Empty(t, m.GetCapturedLog())

		m.AddLogEntry("first")
		m.AddLogEntry("second")
		assert.Equal(t, []string{"first", "second"}, m.GetCapturedLog())
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		m, _, _ := newTestModel(t, false)
		assert.False(t, m.IsTestMode())
		m.AddLogEntry("entry")
		assert.Nil(t, m.GetCapturedLog())
	})
}

func TestKeyPresses(t *testing.T) {
	m, _, ctrl := newTestModel(t, true)

	m.Update(runes("w"))
	m.Update(runes(";"))
	m.Update(runes("v"))
	m.Update(runes("/"))
	m.Update(runes("y"))

	assert.Equal(t, []mark{{0, 1}, {1, 7}, {0, 11}, {1, 11}}, ctrl.marks)
	assert.False(t, ctrl.terminated)
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			m, _, ctrl := newTestModel(t, true)
			_, cmd := m.Update(msg)
			require.NotNil(t, cmd)
			assert.True(t, ctrl.terminated)
			assert.Equal(t, "", m.View())
		})
	}
}

func TestBoardChanges(t *testing.T) {
	m, board, ctrl := newTestModel(t, true)

	board.PlaceCard(0, 0)
	board.SetScore(0, 1)
	board.SetFreeze(0, time.Second)
	_, cmd := m.Update(BoardChangedMsg{})
	require.NotNil(t, cmd, "keeps listening for changes")
	assert.Equal(t, cards.Card(0), m.State().Slots[0])

	board.SetFreeze(0, display.NotFrozen)
	board.SetFreeze(1, 3*time.Second)
	m.Update(BoardChangedMsg{})

	board.AnnounceWinners([]int{0})
	m.Update(GameOverMsg{})

	assert.Equal(t, []string{
		"alice found a set (1)",
		"bob is penalised",
		"Winner: alice",
		"Game over, press esc to exit",
	}, m.GetCapturedLog())

	m.Update(runes("q"))
	assert.Empty(t, ctrl.marks, "no marks after the game is over")
}

func TestTiedWinners(t *testing.T) {
	m, board, _ := newTestModel(t, true)
	board.AnnounceWinners([]int{0, 2})
	m.Update(BoardChangedMsg{})
	assert.Equal(t, []string{"Tied winners: alice, bot1"}, m.GetCapturedLog())
}

func TestView(t *testing.T) {
	m, board, _ := newTestModel(t, false)
	assert.Equal(t, "Loading...", m.View())

	board.PlaceCard(0, 0)
	board.PlaceToken(1, 0)
	board.SetCountdown(42*time.Second, false)
	m.Update(BoardChangedMsg{})
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Set for Bots")
	assert.Contains(t, view, "42s")
	assert.Contains(t, view, "1 red solid diamond")
	assert.Contains(t, view, "empty")
	assert.Contains(t, view, "alice")
}

func TestKeyMapHints(t *testing.T) {
	km := NewKeyMap(testKeys)
	assert.Equal(t, []string{"q", "u"}, km.hints(0))
	assert.Equal(t, []string{"v", "/"}, km.hints(11))
	assert.Empty(t, km.hints(12))

	player, slot, ok := km.Resolve(runes("k"))
	require.True(t, ok)
	assert.Equal(t, 1, player)
	assert.Equal(t, 5, slot)
}
