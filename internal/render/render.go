// Package render formats items for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/tracker/internal/model"
)

// TimeLayout is used for every start and end time shown to the user.
const TimeLayout = "2006-01-02 15:04"

const (
	iconNew        = "○"
	iconInProgress = "◐"
	iconDone       = "●"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusColors = map[model.Status]lipgloss.Color{
		model.StatusNew:        lipgloss.Color("252"),
		model.StatusInProgress: lipgloss.Color("214"),
		model.StatusDone:       lipgloss.Color("42"),
	}

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusNew:
		return iconNew
	case model.StatusInProgress:
		return iconInProgress
	case model.StatusDone:
		return iconDone
	default:
		return "?"
	}
}

func styledStatus(s model.Status, text string) string {
	return lipgloss.NewStyle().Foreground(statusColors[s]).Render(text)
}

// List renders one Line per item.
func List(items []model.Item) string {
	if len(items) == 0 {
		return dimStyle.Render("No items.")
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line(item))
	}
	return strings.Join(lines, "\n")
}

// Line renders the status icon, id, kind, name and window of one item.
func Line(item model.Item) string {
	line := fmt.Sprintf("%s %4d  %s  %s",
		styledStatus(item.Status, statusIcon(item.Status)),
		item.ID,
		kindStyle.Render(fmt.Sprintf("%-7s", item.Kind)),
		item.Name,
	)
	if w := Window(item); w != "" {
		line += "  " + dimStyle.Render(w)
	}
	return line
}

// Detail renders every field of one item.
func Detail(item model.Item) string {
	lines := []string{
		styledStatus(item.Status, statusIcon(item.Status)) + " " + titleStyle.Render(item.Name),
		"",
		detailLabelStyle.Render("ID:       ") + fmt.Sprintf("%d", item.ID),
		detailLabelStyle.Render("Kind:     ") + string(item.Kind),
		detailLabelStyle.Render("Status:   ") + styledStatus(item.Status, string(item.Status)),
	}
	if item.Kind == model.KindSubtask {
		lines = append(lines, detailLabelStyle.Render("Epic:     ")+fmt.Sprintf("%d", item.EpicID))
	}
	if item.HasTime() {
		lines = append(lines,
			detailLabelStyle.Render("Start:    ")+item.StartTime.Format(TimeLayout),
			detailLabelStyle.Render("Duration: ")+Minutes(item.Duration),
			detailLabelStyle.Render("End:      ")+item.EndTime().Format(TimeLayout),
		)
	} else if item.Kind == model.KindEpic && item.TimeDefined {
		lines = append(lines, detailLabelStyle.Render("Window:   ")+dimStyle.Render("no timed subtasks"))
	}
	if item.Description != "" {
		lines = append(lines, "", item.Description)
	}
	return strings.Join(lines, "\n")
}

// Window returns "start → end" for timed items and "" otherwise.
func Window(item model.Item) string {
	if !item.HasTime() {
		return ""
	}
	return item.StartTime.Format(TimeLayout) + " → " + item.EndTime().Format(TimeLayout)
}

// Minutes formats d as a whole number of minutes.
func Minutes(d time.Duration) string {
	return fmt.Sprintf("%dm", int64(d/time.Minute))
}
