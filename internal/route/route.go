// Package route turns an ordered list of waypoints and an aircraft profile
// into leg-by-leg and total route performance, and repairs route statistics
// whose timing is missing or implausible.
//
// Everything here is synchronous. The only shared state is the Store, which
// holds the current versioned snapshot.
package route

import (
	"fmt"

	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

const (
	DefaultPayloadWeightLbs = 2000
	DefaultReserveFuelLbs   = 600
)

// WindAdjuster computes wind-corrected flight time. It is optional; without
// one every leg is timed at still-air cruise speed.
type WindAdjuster interface {
	Course(from, to models.Coordinates) float64
	AdjustedTime(distanceNm, cruiseSpeedKnots, courseDeg float64, w models.WindVector) (float64, bool)
}

type ProfileResolver interface {
	Resolve(aircraftType, registration string) performance.Profile
}

type Leg struct {
	FromIndex          int                `json:"from_index" msgpack:"from_index"`
	ToIndex            int                `json:"to_index" msgpack:"to_index"`
	From               models.Coordinates `json:"from" msgpack:"from"`
	To                 models.Coordinates `json:"to" msgpack:"to"`
	DistanceNm         float64            `json:"distance_nm" msgpack:"distance_nm"`
	BearingDegrees     float64            `json:"bearing_deg" msgpack:"bearing_deg"`
	TimeHours          float64            `json:"time_hours" msgpack:"time_hours"`
	TimeIsWindAdjusted bool               `json:"time_is_wind_adjusted" msgpack:"time_is_wind_adjusted"`
	FuelLbs            float64            `json:"fuel_lbs" msgpack:"fuel_lbs"`
}

// RouteStats is a complete, self-consistent description of a route for one
// aircraft. It is always replaced whole, never patched field by field.
type RouteStats struct {
	TotalDistanceNm     float64             `json:"total_distance_nm" msgpack:"total_distance_nm"`
	TimeHours           float64             `json:"time_hours" msgpack:"time_hours"`
	EstimatedTime       string              `json:"estimated_time" msgpack:"estimated_time"`
	FuelRequiredLbs     float64             `json:"fuel_required_lbs" msgpack:"fuel_required_lbs"`
	UsableLoadLbs       float64             `json:"usable_load_lbs" msgpack:"usable_load_lbs"`
	MaxPassengers       int                 `json:"max_passengers" msgpack:"max_passengers"`
	Legs                []Leg               `json:"legs" msgpack:"legs"`
	WindAdjusted        bool                `json:"wind_adjusted" msgpack:"wind_adjusted"`
	Wind                *models.WindVector  `json:"wind,omitempty" msgpack:"wind,omitempty"`
	Aircraft            performance.Profile `json:"aircraft" msgpack:"aircraft"`
	PayloadWeightLbs    float64             `json:"payload_weight_lbs" msgpack:"payload_weight_lbs"`
	ReserveFuelLbs      float64             `json:"reserve_fuel_lbs" msgpack:"reserve_fuel_lbs"`
	FuelExceedsCapacity bool                `json:"fuel_exceeds_capacity" msgpack:"fuel_exceeds_capacity"`
	Warnings            []string            `json:"warnings,omitempty" msgpack:"warnings,omitempty"`
}

// Options selects the aircraft and loading for a calculation. Nil payload
// and reserve take the package defaults; negative values are clamped to 0.
type Options struct {
	AircraftType     string             `json:"aircraft_type"`
	Registration     string             `json:"registration,omitempty"`
	PayloadWeightLbs *float64           `json:"payload_weight_lbs,omitempty"`
	ReserveFuelLbs   *float64           `json:"reserve_fuel_lbs,omitempty"`
	Wind             *models.WindVector `json:"wind,omitempty"`
}

func (o Options) payload() float64 {
	return pick(o.PayloadWeightLbs, 0, false, DefaultPayloadWeightLbs)
}

func (o Options) reserve() float64 {
	return pick(o.ReserveFuelLbs, 0, false, DefaultReserveFuelLbs)
}

// Validate rejects loading figures that cannot be flown.
func (o Options) Validate() error {
	return validateLoading(o.PayloadWeightLbs, o.ReserveFuelLbs)
}

func validateLoading(payload, reserve *float64) error {
	if payload != nil && *payload < 0 {
		return fmt.Errorf("payload weight must not be negative, got %.0f lbs", *payload)
	}
	if reserve != nil && *reserve < 0 {
		return fmt.Errorf("reserve fuel must not be negative, got %.0f lbs", *reserve)
	}
	return nil
}
