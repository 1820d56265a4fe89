// package ui implements a terminal browser for the catalog (trending,
// popular, recent) built on bubbletea.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/streamtunes/internal/catalog"
	"github.com/desertthunder/streamtunes/internal/models"
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("205")).
	Padding(0, 1)

// view identifies which catalog feed is on screen.
type view int

const (
	trendingView view = iota
	popularView
	recentView
)

func (v view) title() string {
	switch v {
	case popularView:
		return "Popular"
	case recentView:
		return "Recent"
	default:
		return "Trending"
	}
}

// keyMap defines the key bindings for the browser.
type keyMap struct {
	trending key.Binding
	popular  key.Binding
	recent   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		trending: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trending"),
		),
		popular: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "popular"),
		),
		recent: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "recent"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// trackItem adapts a catalog track to the bubbles list.
type trackItem struct {
	track models.Track
}

func (i trackItem) Title() string { return i.track.Title }

func (i trackItem) Description() string {
	return fmt.Sprintf("%s · %s · %d plays", i.track.User.Name, i.track.Genre, i.track.PlayCount)
}

func (i trackItem) FilterValue() string {
	return i.track.Title + " " + i.track.User.Name
}

// tracksMsg delivers a fetched feed to the model.
type tracksMsg struct {
	view   view
	tracks []models.Track
}

// Model is the browser's bubbletea state.
type Model struct {
	ctx     context.Context
	svc     catalog.Service
	limit   int
	view    view
	list    list.Model
	keys    keyMap
	loading bool
}

// NewModel creates a browser over the given catalog service.
func NewModel(ctx context.Context, svc catalog.Service, limit int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Trending"
	l.Styles.Title = titleStyle

	return Model{
		ctx:     ctx,
		svc:     svc,
		limit:   limit,
		list:    l,
		keys:    newKeyMap(),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetch(trendingView)
}

// fetch loads a feed off the UI goroutine.
func (m Model) fetch(v view) tea.Cmd {
	return func() tea.Msg {
		var tracks catalog.TrackList
		switch v {
		case popularView:
			tracks = m.svc.Popular(m.ctx, m.limit)
		case recentView:
			tracks = m.svc.RecentTracks(m.ctx, m.limit)
		default:
			tracks = m.svc.Trending(m.ctx, catalog.TimeRangeWeek, m.limit)
		}
		return tracksMsg{view: v, tracks: tracks.Data}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tracksMsg:
		m.view = msg.view
		m.loading = false
		m.list.Title = msg.view.title()

		items := make([]list.Item, 0, len(msg.tracks))
		for _, track := range msg.tracks {
			items = append(items, trackItem{track: track})
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.trending):
			m.loading = true
			return m, m.fetch(trendingView)
		case key.Matches(msg, m.keys.popular):
			m.loading = true
			return m, m.fetch(popularView)
		case key.Matches(msg, m.keys.recent):
			m.loading = true
			return m, m.fetch(recentView)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	status := "t trending · p popular · r recent · q quit"
	if m.loading {
		status = "loading…"
	}
	return m.list.View() + "\n" + status
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, svc catalog.Service, limit int) error {
	program := tea.NewProgram(NewModel(ctx, svc, limit), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
