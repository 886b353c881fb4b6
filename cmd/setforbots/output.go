package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/setforbots/internal/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// winnerNames renders the winners of result by seat name.
func winnerNames(result game.Result, names []string) string {
	out := make([]string, len(result.Winners))
	for i, w := range result.Winners {
		if w < len(names) {
			out[i] = names[w]
		} else {
			out[i] = fmt.Sprintf("player%d", w+1)
		}
	}
	return strings.Join(out, ", ")
}

// printResult writes the outcome of one game.
func printResult(w io.Writer, result game.Result, names []string) {
	label := "Winner"
	if len(result.Winners) > 1 {
		label = "Tied winners"
	}
	if result.Terminated {
		label += " (terminated)"
	}

	fmt.Fprintln(w, titleStyle.Render("Set for Bots"))
	fmt.Fprintf(w, "%s: %s\n", label, winnerStyle.Render(winnerNames(result, names)))
	for i, score := range result.Scores {
		name := fmt.Sprintf("player%d", i+1)
		if i < len(names) {
			name = names[i]
		}
		fmt.Fprintf(w, "  %-12s %d\n", name, score)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("sets %d, penalties %d, stale %d, reshuffles %d",
		result.Sets, result.Penalties, result.Stale, result.Reshuffles)))
}
