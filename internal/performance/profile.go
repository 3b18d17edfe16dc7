// Package performance resolves the cruise, fuel and weight figures the
// route engine needs for a given aircraft type and tail.
package performance

import (
	"strings"
	"time"
)

type Source string

const (
	SourceDefault      Source = "default"
	SourceCatalog      Source = "catalog"
	SourceRegistration Source = "registration"
)

// Profile is a fully resolved performance profile. Every numeric field the
// engine reads is > 0. Exactly one weight shape is populated: UsefulLoadLbs,
// or MaxTakeoffWeightLbs together with EmptyWeightLbs.
type Profile struct {
	Type                string  `json:"type" msgpack:"type"`
	Name                string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Registration        string  `json:"registration,omitempty" msgpack:"registration,omitempty"`
	CruiseSpeedKnots    float64 `json:"cruise_speed_kt" msgpack:"cruise_speed_kt"`
	FuelBurnLbsPerHour  float64 `json:"fuel_burn_lbs_per_hour" msgpack:"fuel_burn_lbs_per_hour"`
	MaxFuelLbs          float64 `json:"max_fuel_lbs" msgpack:"max_fuel_lbs"`
	UsefulLoadLbs       float64 `json:"useful_load_lbs,omitempty" msgpack:"useful_load_lbs,omitempty"`
	MaxTakeoffWeightLbs float64 `json:"max_takeoff_weight_lbs,omitempty" msgpack:"max_takeoff_weight_lbs,omitempty"`
	EmptyWeightLbs      float64 `json:"empty_weight_lbs,omitempty" msgpack:"empty_weight_lbs,omitempty"`
	PassengerWeightLbs  float64 `json:"passenger_weight_lbs" msgpack:"passenger_weight_lbs"`
	Source              Source  `json:"source" msgpack:"source"`
}

func (p Profile) HasUsefulLoad() bool {
	return p.UsefulLoadLbs > 0
}

// Data is catalog-shaped performance data. A zero field means the value is
// unknown and will be defaulted during resolution.
type Data struct {
	Type                string  `json:"type"`
	Name                string  `json:"name,omitempty"`
	CruiseSpeedKnots    float64 `json:"cruise_speed_kt,omitempty"`
	FuelBurnLbsPerHour  float64 `json:"fuel_burn_lbs_per_hour,omitempty"`
	MaxFuelLbs          float64 `json:"max_fuel_lbs,omitempty"`
	UsefulLoadLbs       float64 `json:"useful_load_lbs,omitempty"`
	MaxTakeoffWeightLbs float64 `json:"max_takeoff_weight_lbs,omitempty"`
	EmptyWeightLbs      float64 `json:"empty_weight_lbs,omitempty"`
	PassengerWeightLbs  float64 `json:"passenger_weight_lbs,omitempty"`
}

// Measured holds figures reported for one specific tail.
type Measured struct {
	Registration       string    `json:"registration"`
	AircraftType       string    `json:"aircraft_type,omitempty"`
	CruiseSpeedKnots   float64   `json:"cruise_speed_kt,omitempty"`
	FuelBurnLbsPerHour float64   `json:"fuel_burn_lbs_per_hour,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const DefaultType = "S92"

// Default is the canonical profile substituted for unknown types and used
// to fill any field a catalog entry leaves empty.
var Default = Data{
	Type:               DefaultType,
	Name:               "Sikorsky S-92",
	CruiseSpeedKnots:   145,
	FuelBurnLbsPerHour: 1100,
	MaxFuelLbs:         5000,
	UsefulLoadLbs:      7000,
	PassengerWeightLbs: 220,
}

// NormalizeType folds type designators so "S-92", "s92" and "S 92" match.
func NormalizeType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	return strings.NewReplacer("-", "", " ", "", ".", "", "_", "").Replace(t)
}

// Resolve builds a Profile from an optional catalog entry and optional tail
// measurements. Each field is defaulted on its own; nothing is ever left at
// zero. Resolve has no hidden state.
func Resolve(aircraftType string, entry *Data, measured *Measured) Profile {
	p := Profile{
		Type:               NormalizeType(aircraftType),
		Name:               Default.Name,
		CruiseSpeedKnots:   Default.CruiseSpeedKnots,
		FuelBurnLbsPerHour: Default.FuelBurnLbsPerHour,
		MaxFuelLbs:         Default.MaxFuelLbs,
		UsefulLoadLbs:      Default.UsefulLoadLbs,
		PassengerWeightLbs: Default.PassengerWeightLbs,
		Source:             SourceDefault,
	}
	if p.Type == "" {
		p.Type = DefaultType
	}

	if entry != nil {
		p.Source = SourceCatalog
		p.Name = entry.Name
		if entry.CruiseSpeedKnots > 0 {
			p.CruiseSpeedKnots = entry.CruiseSpeedKnots
		}
		if entry.FuelBurnLbsPerHour > 0 {
			p.FuelBurnLbsPerHour = entry.FuelBurnLbsPerHour
		}
		if entry.MaxFuelLbs > 0 {
			p.MaxFuelLbs = entry.MaxFuelLbs
		}
		if entry.PassengerWeightLbs > 0 {
			p.PassengerWeightLbs = entry.PassengerWeightLbs
		}

		switch {
		case entry.UsefulLoadLbs > 0:
			p.UsefulLoadLbs = entry.UsefulLoadLbs
		case entry.MaxTakeoffWeightLbs > entry.EmptyWeightLbs && entry.EmptyWeightLbs > 0:
			p.UsefulLoadLbs = 0
			p.MaxTakeoffWeightLbs = entry.MaxTakeoffWeightLbs
			p.EmptyWeightLbs = entry.EmptyWeightLbs
		}
	}

	if measured != nil {
		applied := false
		if measured.CruiseSpeedKnots > 0 {
			p.CruiseSpeedKnots = measured.CruiseSpeedKnots
			applied = true
		}
		if measured.FuelBurnLbsPerHour > 0 {
			p.FuelBurnLbsPerHour = measured.FuelBurnLbsPerHour
			applied = true
		}
		if applied {
			p.Source = SourceRegistration
		}
		p.Registration = strings.ToUpper(strings.TrimSpace(measured.Registration))
	}

	return p
}

// Complete fills any zero figure of p from Default. A profile with neither
// weight shape gets the default useful load.
func Complete(p Profile) Profile {
	if p.Type == "" {
		p.Type = DefaultType
	}
	if p.CruiseSpeedKnots <= 0 {
		p.CruiseSpeedKnots = Default.CruiseSpeedKnots
	}
	if p.FuelBurnLbsPerHour <= 0 {
		p.FuelBurnLbsPerHour = Default.FuelBurnLbsPerHour
	}
	if p.MaxFuelLbs <= 0 {
		p.MaxFuelLbs = Default.MaxFuelLbs
	}
	if p.PassengerWeightLbs <= 0 {
		p.PassengerWeightLbs = Default.PassengerWeightLbs
	}
	if p.UsefulLoadLbs <= 0 && !(p.MaxTakeoffWeightLbs > p.EmptyWeightLbs && p.EmptyWeightLbs > 0) {
		p.UsefulLoadLbs = Default.UsefulLoadLbs
		p.MaxTakeoffWeightLbs = 0
		p.EmptyWeightLbs = 0
	}
	if p.Source == "" {
		p.Source = SourceDefault
	}
	return p
}
