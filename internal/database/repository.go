package database

import (
	"database/sql"
	"errors"
	"strings"

	"heliroute/internal/performance"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db.Conn()}
}

// LoadPerformance returns every aircraft_performance row. NULL columns come
// back as zero so catalog resolution defaults them.
func (r *Repository) LoadPerformance() ([]performance.Data, error) {
	query := `
		SELECT aircraft_type, name, cruise_speed_kt, fuel_burn_lbs_hr, max_fuel_lbs,
			useful_load_lbs, max_takeoff_weight_lbs, empty_weight_lbs, passenger_weight_lbs
		FROM aircraft_performance
		ORDER BY aircraft_type
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []performance.Data
	for rows.Next() {
		var d performance.Data
		var name sql.NullString
		var cruise, burn, maxFuel, useful, mtow, empty, pax sql.NullFloat64

		if err := rows.Scan(&d.Type, &name, &cruise, &burn, &maxFuel, &useful, &mtow, &empty, &pax); err != nil {
			return nil, err
		}

		d.Name = name.String
		d.CruiseSpeedKnots = cruise.Float64
		d.FuelBurnLbsPerHour = burn.Float64
		d.MaxFuelLbs = maxFuel.Float64
		d.UsefulLoadLbs = useful.Float64
		d.MaxTakeoffWeightLbs = mtow.Float64
		d.EmptyWeightLbs = empty.Float64
		d.PassengerWeightLbs = pax.Float64
		out = append(out, d)
	}

	return out, rows.Err()
}

func (r *Repository) SavePerformance(d performance.Data) error {
	query := `
		INSERT INTO aircraft_performance (aircraft_type, name, cruise_speed_kt, fuel_burn_lbs_hr, max_fuel_lbs,
			useful_load_lbs, max_takeoff_weight_lbs, empty_weight_lbs, passenger_weight_lbs, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3::double precision, 0), NULLIF($4::double precision, 0), NULLIF($5::double precision, 0), NULLIF($6::double precision, 0), NULLIF($7::double precision, 0), NULLIF($8::double precision, 0), NULLIF($9::double precision, 0), NOW())
		ON CONFLICT (aircraft_type) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, aircraft_performance.name),
			cruise_speed_kt = COALESCE(EXCLUDED.cruise_speed_kt, aircraft_performance.cruise_speed_kt),
			fuel_burn_lbs_hr = COALESCE(EXCLUDED.fuel_burn_lbs_hr, aircraft_performance.fuel_burn_lbs_hr),
			max_fuel_lbs = COALESCE(EXCLUDED.max_fuel_lbs, aircraft_performance.max_fuel_lbs),
			useful_load_lbs = EXCLUDED.useful_load_lbs,
			max_takeoff_weight_lbs = EXCLUDED.max_takeoff_weight_lbs,
			empty_weight_lbs = EXCLUDED.empty_weight_lbs,
			passenger_weight_lbs = COALESCE(EXCLUDED.passenger_weight_lbs, aircraft_performance.passenger_weight_lbs),
			updated_at = NOW()
	`

	_, err := r.db.Exec(query, performance.NormalizeType(d.Type), d.Name, d.CruiseSpeedKnots, d.FuelBurnLbsPerHour,
		d.MaxFuelLbs, d.UsefulLoadLbs, d.MaxTakeoffWeightLbs, d.EmptyWeightLbs, d.PassengerWeightLbs)
	return err
}

// GetRegistration returns nil, nil when the tail is unknown.
func (r *Repository) GetRegistration(registration string) (*performance.Measured, error) {
	query := `
		SELECT registration, aircraft_type, cruise_speed_kt, fuel_burn_lbs_hr, updated_at
		FROM registration_performance
		WHERE registration = $1
	`

	var m performance.Measured
	var acType sql.NullString
	var cruise, burn sql.NullFloat64

	err := r.db.QueryRow(query, strings.ToUpper(registration)).Scan(&m.Registration, &acType, &cruise, &burn, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m.AircraftType = acType.String
	m.CruiseSpeedKnots = cruise.Float64
	m.FuelBurnLbsPerHour = burn.Float64
	return &m, nil
}

func (r *Repository) SaveRegistration(m *performance.Measured) error {
	query := `
		INSERT INTO registration_performance (registration, aircraft_type, cruise_speed_kt, fuel_burn_lbs_hr, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3::double precision, 0), NULLIF($4::double precision, 0), NOW())
		ON CONFLICT (registration) DO UPDATE SET
			aircraft_type = COALESCE(EXCLUDED.aircraft_type, registration_performance.aircraft_type),
			cruise_speed_kt = COALESCE(EXCLUDED.cruise_speed_kt, registration_performance.cruise_speed_kt),
			fuel_burn_lbs_hr = COALESCE(EXCLUDED.fuel_burn_lbs_hr, registration_performance.fuel_burn_lbs_hr),
			updated_at = NOW()
	`

	_, err := r.db.Exec(query, strings.ToUpper(m.Registration), performance.NormalizeType(m.AircraftType),
		m.CruiseSpeedKnots, m.FuelBurnLbsPerHour)
	return err
}
