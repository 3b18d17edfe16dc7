package models

import "math"

// Coordinates are stored lon-first to match GeoJSON.
type Coordinates struct {
	Lon float64 `json:"lon" msgpack:"lon"`
	Lat float64 `json:"lat" msgpack:"lat"`
}

type Waypoint struct {
	ID          string      `json:"id,omitempty" msgpack:"id,omitempty"`
	Name        string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Coordinates Coordinates `json:"coordinates" msgpack:"coordinates"`
}

// WindVector gives the direction the wind blows from, in degrees true.
type WindVector struct {
	SpeedKnots       float64 `json:"speed_kt" msgpack:"speed_kt"`
	DirectionDegrees float64 `json:"direction_deg" msgpack:"direction_deg"`
}

func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ValidWaypoints returns the waypoints with usable coordinates, preserving
// order. The input slice is not modified.
func ValidWaypoints(wps []Waypoint) []Waypoint {
	out := make([]Waypoint, 0, len(wps))
	for _, wp := range wps {
		if wp.Coordinates.Valid() {
			out = append(out, wp)
		}
	}
	return out
}

func (w *WindVector) Calm() bool {
	return w == nil || w.SpeedKnots <= 0
}
