package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kass/go-geocode/pkg/geocode"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6272A4")).
			Width(22).
			Align(lipgloss.Center)

	currentStyle = cellStyle.
			BorderForeground(lipgloss.Color("#50FA7B")).
			Bold(true)
)

type keyMap struct {
	North, South, East, West key.Binding
	LeftBottom, LeftTop      key.Binding
	RightBottom, RightTop    key.Binding
	Parent                   key.Binding
	Help, Quit               key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.North, k.South, k.East, k.West, k.Parent, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.North, k.South, k.East, k.West},
		{k.LeftBottom, k.LeftTop, k.RightBottom, k.RightTop},
		{k.Parent, k.Help, k.Quit},
	}
}

var keys = keyMap{
	North:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "north")),
	South:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "south")),
	East:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "east")),
	West:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "west")),
	LeftBottom:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "left-bottom child")),
	LeftTop:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "left-top child")),
	RightBottom: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "right-bottom child")),
	RightTop:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "right-top child")),
	Parent:      key.NewBinding(key.WithKeys("backspace", "u"), key.WithHelp("⌫/u", "parent")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// model is a cell explorer: the current cell sits in the middle of its
// eight neighbors and the keys move, subdivide or climb.
type model struct {
	cell   geocode.GeoCode
	status string
	help   help.Model
}

func newModel(cell geocode.GeoCode) model {
	return model{cell: cell, help: help.New()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.North):
			m.cell = m.cell.Neighbor(geocode.North)
		case key.Matches(msg, keys.South):
			m.cell = m.cell.Neighbor(geocode.South)
		case key.Matches(msg, keys.East):
			m.cell = m.cell.Neighbor(geocode.East)
		case key.Matches(msg, keys.West):
			m.cell = m.cell.Neighbor(geocode.West)
		case key.Matches(msg, keys.LeftBottom):
			m.descend(m.cell.LeftBottom)
		case key.Matches(msg, keys.LeftTop):
			m.descend(m.cell.LeftTop)
		case key.Matches(msg, keys.RightBottom):
			m.descend(m.cell.RightBottom)
		case key.Matches(msg, keys.RightTop):
			m.descend(m.cell.RightTop)
		case key.Matches(msg, keys.Parent):
			if parent, ok := m.cell.Parent(); ok {
				m.cell = parent
			} else {
				m.status = "already at the coarsest precision"
			}
		}
	}
	return m, nil
}

func (m *model) descend(child func() (geocode.GeoCode, error)) {
	c, err := child()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.cell = c
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Geocode Cell Explorer"))
	b.WriteString("\n")
	b.WriteString(renderCell(m.cell))
	b.WriteString("\n\n")
	b.WriteString(renderGrid(m.cell))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func renderCell(g geocode.GeoCode) string {
	area := g.Decode()
	center := area.Center()
	rows := []struct {
		label string
		value string
	}{
		{"Cell", g.String()},
		{"Bits", fmt.Sprintf("%d (%#x)", g.Bits(), g.Bits())},
		{"Index", fmt.Sprintf("lat %d, lng %d", g.Latitude(), g.Longitude())},
		{"Area", area.String()},
		{"Center", center.String()},
		{"Size", fmt.Sprintf("%g° x %g°", area.Lat.Length(), area.Lng.Length())},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-7s", r.label)), statStyle.Render(r.value)))
	}
	return strings.Join(lines, "\n")
}

// renderGrid lays out the neighbors around the cell with north at the top.
func renderGrid(g geocode.GeoCode) string {
	n := g.Neighbors()
	layout := [3][3]struct {
		label string
		cell  geocode.GeoCode
	}{
		{{"NW", n.NorthWest}, {"N", n.North}, {"NE", n.NorthEast}},
		{{"W", n.West}, {"", g}, {"E", n.East}},
		{{"SW", n.SouthWest}, {"S", n.South}, {"SE", n.SouthEast}},
	}

	rows := make([]string, 0, 3)
	for _, row := range layout {
		boxes := make([]string, 0, 3)
		for _, c := range row {
			if c.label == "" {
				boxes = append(boxes, currentStyle.Render(fmt.Sprintf("here\n%#x", c.cell.Bits())))
				continue
			}
			boxes = append(boxes, cellStyle.Render(fmt.Sprintf("%s\n%#x", c.label, c.cell.Bits())))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func main() {
	var (
		lat       = flag.Float64("lat", 25.006, "Starting latitude")
		lon       = flag.Float64("lon", 121.46, "Starting longitude")
		precision = flag.Uint("precision", 4, "Starting precision")
	)
	flag.Parse()

	if *precision > uint(geocode.MaxPrecision) {
		log.Fatalf("precision %d out of range", *precision)
	}
	cell, err := geocode.EncodeLatLng(*lat, *lon, uint8(*precision))
	if err != nil {
		log.Fatal(err)
	}

	// Without a terminal there is nothing to navigate; print one frame.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println(newModel(cell).View())
		return
	}

	if _, err := tea.NewProgram(newModel(cell)).Run(); err != nil {
		log.Fatal(err)
	}
}
