package webhook

import (
	"time"

	"heliroute/internal/route"
)

type EventType string

const (
	EventNoGo          EventType = "no_go"
	EventRouteRepaired EventType = "route_repaired"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Version   uint64
	Stats     route.RouteStats
	Message   string
}

func NewNoGoEvent(snap route.Snapshot, reason string) Event {
	return Event{
		Type:      EventNoGo,
		Timestamp: snap.UpdatedAt,
		Version:   snap.Version,
		Stats:     snap.Stats,
		Message:   reason,
	}
}

func NewRepairedEvent(snap route.Snapshot) Event {
	return Event{
		Type:      EventRouteRepaired,
		Timestamp: snap.UpdatedAt,
		Version:   snap.Version,
		Stats:     snap.Stats,
		Message:   "Route timing was stale and has been regenerated",
	}
}

// noGoReason returns why a snapshot cannot be flown as loaded, or "".
func noGoReason(s route.RouteStats) string {
	if s.FuelExceedsCapacity {
		return route.WarnFuelExceedsCapacity
	}
	for _, w := range s.Warnings {
		if w == route.WarnUsableLoadClamped {
			return w
		}
	}
	return ""
}
