package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
)

// Controller is the part of a running game the terminal drives.
type Controller interface {
	MarkSlot(player, slot int) bool
	Terminate()
}

// Options configures a TUIModel.
type Options struct {
	Board      *display.Board
	Controller Controller
	Rules      cards.Rules
	Names      []string
	Keys       map[int][]string
	Columns    int
	Logger     *log.Logger
	TestMode   bool
}

// TUIModel renders the board mirror and turns key presses into marks
type TUIModel struct {
	board  *display.Board
	ctrl   Controller
	rules  cards.Rules
	names  []string
	keys   KeyMap
	logger *log.Logger

	// UI components
	logViewport viewport.Model

	// State
	state    display.State
	gameLog  []string
	scored   map[int]bool // scored since the last observed hold
	quitting bool
	gameOver bool
	columns  int

	// Dimensions
	width  int
	height int

	// Test mode
	testMode    bool
	capturedLog []string
}

// BoardChangedMsg reports that the board mirror was updated.
type BoardChangedMsg struct{}

// GameOverMsg is sent once the game has finished and its players stopped.
type GameOverMsg struct{}

// NewTUIModel creates a model for opts.
func NewTUIModel(opts Options) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	columns := opts.Columns
	if columns < 1 {
		columns = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &TUIModel{
		board:       opts.Board,
		ctrl:        opts.Controller,
		rules:       opts.Rules,
		names:       opts.Names,
		keys:        NewKeyMap(opts.Keys),
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		state:       opts.Board.Snapshot(),
		scored:      make(map[int]bool),
		columns:     columns,
		testMode:    opts.TestMode,
		capturedLog: []string{},
	}
}

// Init starts listening for board changes
func (m *TUIModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *TUIModel) waitForChange() tea.Cmd {
	changed := m.board.Changed()
	return func() tea.Msg {
		<-changed
		return BoardChangedMsg{}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case BoardChangedMsg:
		m.refresh()
		cmds = append(cmds, m.waitForChange())

	case GameOverMsg:
		m.refresh()
		m.gameOver = true
		m.AddLogEntry("Game over, press esc to exit")

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.ctrl.Terminate()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		}
		if player, slot, ok := m.keys.Resolve(msg); ok && !m.gameOver {
			accepted := m.ctrl.MarkSlot(player, slot)
			m.logger.Debug("Key press", "player", player, "slot", slot, "accepted", accepted)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refresh takes a new snapshot and logs what changed since the last one.
func (m *TUIModel) refresh() {
	prev := m.state
	m.state = m.board.Snapshot()

	for player, score := range m.state.Scores {
		if score > prev.Scores[player] {
			m.scored[player] = true
			m.AddLogEntry(fmt.Sprintf("%s found a set (%d)", m.name(player), score))
		}
	}
	for player := range m.state.Freezes {
		if m.state.Frozen(player) && !prev.Frozen(player) {
			if !m.scored[player] {
				m.AddLogEntry(fmt.Sprintf("%s is penalised", m.name(player)))
			}
			m.scored[player] = false
		}
	}
	if m.state.Finished && !prev.Finished {
		m.AddLogEntry(m.winnersLine())
	}
}

func (m *TUIModel) name(player int) string {
	if player >= 0 && player < len(m.names) && m.names[player] != "" {
		return m.names[player]
	}
	return fmt.Sprintf("player%d", player+1)
}

func (m *TUIModel) winnersLine() string {
	names := make([]string, len(m.state.Winners))
	for i, w := range m.state.Winners {
		names[i] = m.name(w)
	}
	if len(names) == 1 {
		return fmt.Sprintf("Winner: %s", names[0])
	}
	return fmt.Sprintf("Tied winners: %s", strings.Join(names, ", "))
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	grid := m.renderGrid()
	sidebar := paneStyle.Width(28).Render(m.renderScoreboard())
	top := lipgloss.JoinHorizontal(lipgloss.Top, grid, sidebar)

	logHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(top)-2, 1)
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = logHeight
	logPane := paneStyle.Render(m.logViewport.View())

	parts := []string{header, top}
	if m.state.Finished {
		parts = append(parts, WinnerStyle.Render(m.winnersLine()))
	}
	parts = append(parts, logPane)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *TUIModel) renderHeader() string {
	title := HeaderStyle.Render("Set for Bots")
	clock := fmt.Sprintf("%ds", int(m.state.Countdown.Round(time.Second)/time.Second))
	if m.state.Warn {
		clock = ErrorStyle.Render(fmt.Sprintf("%.1fs", m.state.Countdown.Seconds()))
	} else {
		clock = SuccessStyle.Render(clock)
	}
	help := KeyHintStyle.Render("esc to quit")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", clock, "  ", help)
}

func (m *TUIModel) renderGrid() string {
	var rows []string
	var row []string
	for slot := range m.state.Slots {
		row = append(row, m.renderTile(slot))
		if len(row) == m.columns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *TUIModel) renderTile(slot int) string {
	var b strings.Builder
	b.WriteString(KeyHintStyle.Render(strings.Join(m.keys.hints(slot), " ")))
	b.WriteString("\n")
	b.WriteString(m.renderCard(m.state.Slots[slot]))
	b.WriteString("\n")

	tokens := m.state.Tokens[slot]
	for _, player := range tokens {
		b.WriteString(playerStyle(player).Render("●"))
	}

	style := tileStyle
	if len(tokens) > 0 {
		style = markedTileStyle
	}
	return style.Render(b.String())
}

func (m *TUIModel) renderCard(c cards.Card) string {
	if c == cards.None {
		return InfoStyle.Render("empty")
	}
	text := m.rules.Describe(c)
	if m.rules.IsClassic() {
		return cardColours[m.rules.Features(c)[cards.Colour]].Render(text)
	}
	return GameLogStyle.Render(text)
}

func (m *TUIModel) renderScoreboard() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Scores"))
	b.WriteString("\n")
	for player := range m.names {
		line := fmt.Sprintf("%s %d", playerStyle(player).Render(m.name(player)), m.state.Scores[player])
		if m.state.Frozen(player) {
			line += " " + WarningStyle.Render(fmt.Sprintf("frozen %ds", int(m.state.Freezes[player].Round(time.Second)/time.Second)))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// State returns the last snapshot the model rendered from.
func (m *TUIModel) State() display.State {
	return m.state
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
