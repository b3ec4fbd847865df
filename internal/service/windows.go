package service

import "time"

// WindowStep separates consecutive windows so the boundary instant is never
// queried twice. The authority receives second-precision timestamps.
const WindowStep = time.Second

// DefaultWindowDays is the widest span the search endpoint accepts.
const DefaultWindowDays = 30

// Window is a search interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// SplitWindows partitions [start, end) into chronological windows of at most
// days calendar days. Each window starts WindowStep after the previous one
// ends. Bounds are normalized to UTC.
func SplitWindows(start, end time.Time, days int) []Window {
	if days <= 0 {
		days = DefaultWindowDays
	}
	start, end = start.UTC(), end.UTC()

	var out []Window
	for cur := start; cur.Before(end); {
		next := cur.AddDate(0, 0, days)
		if next.After(end) {
			next = end
		}
		out = append(out, Window{From: cur, To: next})
		cur = next.Add(WindowStep)
	}
	return out
}
