package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Tank-Arena/internal/game"
	"github.com/Garsondee/Tank-Arena/internal/render"
)

const (
	feedMaxEntries = 6
	feedLineHeight = 14
	feedWidth      = 300
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string
	Color   color.Color
	Message string
}

// EventFeed is a ring buffer of recent match events rendered on-screen.
type EventFeed struct {
	entries [feedMaxEntries]FeedEntry
	head    int
	count   int
}

// Add appends an entry, evicting the oldest when full.
func (f *EventFeed) Add(tick int, label string, c color.Color, msg string) {
	f.entries[f.head] = FeedEntry{
		Tick:    tick,
		Label:   label,
		Color:   c,
		Message: msg,
	}
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (f *EventFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// Draw renders the feed in the bottom-left corner, newest at the bottom.
func (f *EventFeed) Draw(screen *ebiten.Image, x, bottom float64) {
	entries := f.Recent()
	if len(entries) == 0 {
		return
	}
	h := float64(len(entries)*feedLineHeight + 6)
	vector.FillRect(screen, float32(x), float32(bottom-h), feedWidth, float32(h), color.RGBA{A: 140}, false)

	y := bottom - h + 3
	for _, e := range entries {
		vector.FillRect(screen, float32(x+4), float32(y+4), 3, 6, e.Color, false)
		render.Text(screen, fmt.Sprintf("%s %s", e.Label, e.Message), x+12, y, color.White)
		y += feedLineHeight
	}
}

// feedColor picks the marker colour for an engine log entry.
func feedColor(g *game.Game, name string) color.Color {
	for slot := 0; slot < game.MaxPlayers; slot++ {
		if p := g.Slot(slot); p != nil && p.Name == name {
			return p.Tank.Color
		}
	}
	return color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
}

// feedLine turns an engine log entry into a feed message. It returns false
// for entries the feed does not show.
func feedLine(e game.MatchLogEntry) (string, bool) {
	switch {
	case e.Category == "fire" && e.Key == "shot":
		return "fired (" + e.Value + ")", true
	case e.Category == "fire" && e.Key == "empty":
		return "is out of ammo", true
	case e.Category == "bullet" && e.Key == "hit":
		return "was destroyed", true
	case e.Category == "match" && e.Key == "start":
		return "match started: " + e.Value, true
	case e.Category == "match" && e.Key == "end":
		return e.Value, true
	}
	return "", false
}
