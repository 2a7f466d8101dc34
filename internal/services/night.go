// Package services – night gate
//
// One command is only valid during a fixed local-time window (by default
// 18:00–06:00 in Asia/Dhaka). The gate evaluates wall-clock "now" in the
// configured zone and, when closed, reports how long until the window next
// opens.
package services

import "time"

// NightWindow is a local-time window that wraps midnight when StartHour is
// later in the day than EndHour.
type NightWindow struct {
	Location  *time.Location
	StartHour int
	EndHour   int
}

// NewNightWindow constructs a NightWindow in the named zone.
func NewNightWindow(tz string, startHour, endHour int) (NightWindow, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return NightWindow{}, err
	}
	return NightWindow{Location: loc, StartHour: startHour, EndHour: endHour}, nil
}

// Open reports whether now falls inside the window.
func (w NightWindow) Open(now time.Time) bool {
	h := now.In(w.Location).Hour()
	if w.StartHour > w.EndHour {
		// wraps midnight, e.g. 18..06
		return h >= w.StartHour || h < w.EndHour
	}
	return h >= w.StartHour && h < w.EndHour
}

// UntilOpen returns the duration from now until the window next opens. It
// returns zero when the window is already open.
func (w NightWindow) UntilOpen(now time.Time) time.Duration {
	if w.Open(now) {
		return 0
	}
	local := now.In(w.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, 0, 0, 0, w.Location)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}
