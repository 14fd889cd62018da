package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/celestiatrack/skyfeed/internal/model"
	"github.com/celestiatrack/skyfeed/internal/providers"
	"github.com/celestiatrack/skyfeed/internal/timeutil"
)

// Status tier colors
const (
	colorTierSuccess = "#7CFC00" // Lawn green - quiet conditions
	colorTierWarning = "#FFD700" // Gold - elevated activity
	colorTierDanger  = "#FF4500" // Orange-red - storm conditions
)

// RenderEventTable renders a page of the event feed.
// Format:
//
//	PEAK               BODY      TYPE
//	2026-03-03 12:00   Moon      Lunar Eclipse
//	2026-03-20 09:01   Sun       Astronomical Twilight Start
func RenderEventTable(events []model.Event, offset, limit int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	headStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	if len(events) == 0 {
		return "  " + dimStyle.Render("No upcoming events")
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		offset = 0
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}

	var lines []string
	lines = append(lines, "  "+headStyle.Render(fmt.Sprintf("%-18s %-10s %s", "PEAK", "BODY", "TYPE")))

	for _, ev := range events[offset:end] {
		peak := formatPeak(ev.Peak)
		line := fmt.Sprintf("%-18s %-10s %s", peak, truncate(ev.Body, 10), truncate(ev.Type, 40))
		lines = append(lines, "  "+bodyStyle.Render(line))
	}

	if end < len(events) {
		lines = append(lines, "  "+dimStyle.Render(fmt.Sprintf("... %d more", len(events)-end)))
	}

	return strings.Join(lines, "\n")
}

// RenderAuroraLine renders the current geomagnetic status, colored by tier.
// Format: Aurora  Kp 6.67  High (Storm)
func RenderAuroraLine(reading *model.AuroraReading) string {
	if reading == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	tier := lipgloss.NewStyle().Foreground(lipgloss.Color(auroraColor(reading.Color)))

	return dimStyle.Render("Aurora  ") +
		tier.Render(fmt.Sprintf("Kp %.2f  %s", reading.KpIndex, reading.Status))
}

// RenderMoonLine renders the moon's current appearance.
// Format: Moon    Waxing Gibbous  73% lit  age 10.2d
func RenderMoonLine(phase *providers.MoonPhaseAttrs) string {
	if phase == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	valStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	parts := []string{}
	if phase.Phase != "" {
		parts = append(parts, phase.Phase)
	}
	parts = append(parts, fmt.Sprintf("%.0f%% lit", phase.IlluminatedFraction*100))
	if phase.AgeDays > 0 {
		parts = append(parts, fmt.Sprintf("age %.1fd", phase.AgeDays))
	}

	return dimStyle.Render("Moon    ") + valStyle.Render(strings.Join(parts, "  "))
}

// auroraColor maps the reading's display tier onto a terminal color.
func auroraColor(tier string) string {
	switch tier {
	case providers.KpColorDanger:
		return colorTierDanger
	case providers.KpColorWarning:
		return colorTierWarning
	default:
		return colorTierSuccess
	}
}

// formatPeak compacts an ISO peak for column display, falling back to the
// raw string when it does not parse.
func formatPeak(peak string) string {
	if at, ok := timeutil.ParseISO(peak); ok {
		return at.Format("2006-01-02 15:04")
	}
	return truncate(peak, 18)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
