// Package gate is the keyboard state machine that reveals the admin dashboards.
//
// It only decides what is visible. It is not an access control mechanism:
// anything it reveals is already reachable by whoever holds the keyboard.
package gate

import "slices"

// Key codes as reported by DOM KeyboardEvent.code
const (
	ArrowUp    = "ArrowUp"
	ArrowDown  = "ArrowDown"
	ArrowLeft  = "ArrowLeft"
	ArrowRight = "ArrowRight"
	KeyA       = "KeyA"
	KeyD       = "KeyD"
	KeyX       = "KeyX"
)

// UnlockSequence switches admin mode on
var UnlockSequence = []string{ArrowUp, ArrowUp, ArrowDown, ArrowDown}

// Key is one key press
type Key struct {
	Code string
	Ctrl bool
	Alt  bool
}

func (k Key) chord(code string) bool {
	return k.Ctrl && k.Alt && k.Code == code
}

// Effect reports what a key press changed
type Effect int

const (
	None Effect = iota
	Unlocked
	OpenedLeads
	OpenedAnalytics
	Locked
)

func (e Effect) String() string {
	switch e {
	case Unlocked:
		return "unlocked"
	case OpenedLeads:
		return "opened leads"
	case OpenedAnalytics:
		return "opened analytics"
	case Locked:
		return "locked"
	}
	return "none"
}

// Gate tracks admin mode and dashboard visibility.
// The zero value is locked with both dashboards closed.
type Gate struct {
	window        []string
	unlocked      bool
	leadsOpen     bool
	analyticsOpen bool
}

// New returns a locked gate
func New() *Gate {
	return &Gate{}
}

// Press feeds one key press to the gate
func (g *Gate) Press(k Key) Effect {
	if !g.unlocked {
		g.window = append(g.window, k.Code)
		if over := len(g.window) - len(UnlockSequence); over > 0 {
			g.window = g.window[over:]
		}
		if slices.Equal(g.window, UnlockSequence) {
			g.window = nil
			g.unlocked = true
			return Unlocked
		}
		return None
	}

	switch {
	case k.chord(KeyD):
		g.leadsOpen = true
		return OpenedLeads
	case k.chord(KeyA):
		g.analyticsOpen = true
		return OpenedAnalytics
	case k.chord(KeyX):
		g.Lock()
		return Locked
	}
	return None
}

// Lock leaves admin mode and closes both dashboards
func (g *Gate) Lock() {
	g.unlocked = false
	g.leadsOpen = false
	g.analyticsOpen = false
	g.window = nil
}

// CloseLeads hides the lead dashboard; admin mode stays on
func (g *Gate) CloseLeads() { g.leadsOpen = false }

// CloseAnalytics hides the analytics dashboard; admin mode stays on
func (g *Gate) CloseAnalytics() { g.analyticsOpen = false }

// Unlocked reports whether admin mode is on
func (g *Gate) Unlocked() bool { return g.unlocked }

// LeadsOpen reports whether the lead dashboard is visible
func (g *Gate) LeadsOpen() bool { return g.leadsOpen }

// AnalyticsOpen reports whether the analytics dashboard is visible
func (g *Gate) AnalyticsOpen() bool { return g.analyticsOpen }
