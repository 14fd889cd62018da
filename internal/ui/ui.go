// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/model"
	"github.com/celestiatrack/skyfeed/internal/providers"
	"github.com/celestiatrack/skyfeed/internal/version"
)

// refreshInterval is how often the feed re-fetches in the background.
const refreshInterval = 10 * time.Minute

// pageSize is how many events one screen page shows.
const pageSize = 15

// FeedSource produces the merged event feed for an observer.
type FeedSource interface {
	Feed(ctx context.Context, obs astro.Observer) ([]model.Event, error)
}

// AuroraSource reports current geomagnetic activity.
type AuroraSource interface {
	Current(ctx context.Context) (*model.AuroraReading, error)
}

// MoonPhaseSource answers moon appearance queries.
type MoonPhaseSource interface {
	MoonPhase(ctx context.Context, instant string, obs astro.Observer) (*providers.MoonPhaseAttrs, error)
}

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// feedLoadedMsg carries a completed feed fetch.
	feedLoadedMsg struct {
		events []model.Event
		err    error
		took   time.Duration
	}

	// auroraLoadedMsg carries a completed aurora fetch.
	auroraLoadedMsg struct {
		reading *model.AuroraReading
	}

	// moonLoadedMsg carries a completed moon phase fetch.
	moonLoadedMsg struct {
		phase *providers.MoonPhaseAttrs
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	feed     FeedSource
	aurora   AuroraSource    // nil disables the aurora line
	moon     MoonPhaseSource // nil disables the moon line
	observer astro.Observer

	// UI state
	width    int
	height   int
	ready    bool
	loading  bool
	offset   int
	lastErr  error
	took     time.Duration
	fetched  time.Time

	// Data
	events  []model.Event
	reading *model.AuroraReading
	phase   *providers.MoonPhaseAttrs
}

// New creates the root UI model.
func New(feed FeedSource, observer astro.Observer) Model {
	return Model{
		feed:     feed,
		observer: observer,
		loading:  true,
	}
}

// WithAurora enables the aurora status line.
func (m Model) WithAurora(src AuroraSource) Model {
	m.aurora = src
	return m
}

// WithMoonPhase enables the moon phase line.
func (m Model) WithMoonPhase(src MoonPhaseSource) Model {
	m.moon = src
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.loadFeed(),
		m.loadAurora(),
		m.loadMoon(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "r":
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.loadFeed(), m.loadAurora(), m.loadMoon())
			}

		case "down", "j":
			if m.offset+pageSize < len(m.events) {
				m.offset++
			}

		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}

		case "pgdown", " ":
			m.offset += pageSize
			if m.offset+pageSize > len(m.events) {
				m.offset = max(0, len(m.events)-pageSize)
			}

		case "pgup":
			m.offset = max(0, m.offset-pageSize)

		case "g":
			m.offset = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if !m.loading && time.Since(m.fetched) > refreshInterval {
			m.loading = true
			cmds = append(cmds, m.loadFeed(), m.loadAurora(), m.loadMoon())
		}
		return m, tea.Batch(cmds...)

	case feedLoadedMsg:
		m.loading = false
		m.lastErr = msg.err
		m.took = msg.took
		m.fetched = time.Now()
		if msg.err == nil {
			m.events = msg.events
			if m.offset >= len(m.events) {
				m.offset = 0
			}
		}

	case auroraLoadedMsg:
		if msg.reading != nil {
			m.reading = msg.reading
		}

	case moonLoadedMsg:
		if msg.phase != nil {
			m.phase = msg.phase
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderStatusLines())
	b.WriteString("\n")
	b.WriteString(RenderEventTable(m.events, m.offset, pageSize))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(title.Render("SKYFEED"))
	b.WriteString(muted.Render("  ·  Celestial Event Feed"))
	b.WriteString("\n  ")
	b.WriteString(muted.Render(fmt.Sprintf("lat %.2f  lon %.2f  |  v%s", m.observer.LatDeg, m.observer.LonDeg, version.Version)))
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) renderStatusLines() string {
	var lines []string
	if line := RenderAuroraLine(m.reading); line != "" {
		lines = append(lines, "  "+line)
	}
	if line := RenderMoonLine(m.phase); line != "" {
		lines = append(lines, "  "+line)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) renderFooter() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	var status string
	switch {
	case m.loading:
		status = dim.Render("fetching...")
	case m.lastErr != nil:
		status = errStyle.Render("ERROR: " + m.lastErr.Error())
	default:
		status = dim.Render(fmt.Sprintf("%d events (%s)", len(m.events), m.took.Round(time.Millisecond)))
	}

	help := dim.Render("j/k: scroll | space: page | g: top | r: refresh | q: quit")
	return "  " + status + "  " + dim.Render("|") + "  " + help
}

func (m Model) loadFeed() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		start := time.Now()
		events, err := m.feed.Feed(ctx, m.observer)
		return feedLoadedMsg{events: events, err: err, took: time.Since(start)}
	}
}

func (m Model) loadAurora() tea.Cmd {
	if m.aurora == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reading, err := m.aurora.Current(ctx)
		if err != nil {
			return auroraLoadedMsg{}
		}
		return auroraLoadedMsg{reading: reading}
	}
}

func (m Model) loadMoon() tea.Cmd {
	if m.moon == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		instant := time.Now().UTC().Format("2006-01-02T15:04")
		phase, err := m.moon.MoonPhase(ctx, instant, m.observer)
		if err != nil {
			return moonLoadedMsg{}
		}
		return moonLoadedMsg{phase: phase}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
