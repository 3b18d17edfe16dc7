package performance

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// RegistrationSource supplies measured performance for a specific tail.
// Implementations must answer synchronously.
type RegistrationSource interface {
	Measured(registration string) (*Measured, bool)
}

var builtins = []Data{
	Default,
	{Type: "AW139", Name: "Leonardo AW139", CruiseSpeedKnots: 150, FuelBurnLbsPerHour: 1000, MaxFuelLbs: 3700, MaxTakeoffWeightLbs: 15212, EmptyWeightLbs: 9400, PassengerWeightLbs: 220},
	{Type: "AW189", Name: "Leonardo AW189", CruiseSpeedKnots: 145, FuelBurnLbsPerHour: 1200, MaxFuelLbs: 5000, MaxTakeoffWeightLbs: 18960, EmptyWeightLbs: 11700, PassengerWeightLbs: 220},
	{Type: "H175", Name: "Airbus H175", CruiseSpeedKnots: 150, FuelBurnLbsPerHour: 1150, MaxFuelLbs: 5000, MaxTakeoffWeightLbs: 17196, EmptyWeightLbs: 10800, PassengerWeightLbs: 220},
	{Type: "S76D", Name: "Sikorsky S-76D", CruiseSpeedKnots: 150, FuelBurnLbsPerHour: 800, MaxFuelLbs: 2100, UsefulLoadLbs: 4700, PassengerWeightLbs: 220},
	{Type: "BELL412", Name: "Bell 412EP", CruiseSpeedKnots: 122, FuelBurnLbsPerHour: 800, MaxFuelLbs: 2200, UsefulLoadLbs: 5000, PassengerWeightLbs: 200},
	{Type: "H145", Name: "Airbus H145", CruiseSpeedKnots: 130, FuelBurnLbsPerHour: 550, MaxFuelLbs: 1500, UsefulLoadLbs: 4000, PassengerWeightLbs: 200},
	{Type: "EC135", Name: "Airbus EC135", CruiseSpeedKnots: 125, FuelBurnLbsPerHour: 450, MaxFuelLbs: 1200, MaxTakeoffWeightLbs: 6570, EmptyWeightLbs: 3300, PassengerWeightLbs: 200},
}

// Catalog maps aircraft types to performance data. Built-in entries can be
// overlaid from a JSON file or the database.
type Catalog struct {
	mu            sync.RWMutex
	entries       map[string]Data
	registrations RegistrationSource
}

func NewCatalog(registrations RegistrationSource) *Catalog {
	c := &Catalog{
		entries:       make(map[string]Data, len(builtins)),
		registrations: registrations,
	}
	for _, d := range builtins {
		c.Add(d)
	}
	return c
}

// Add merges d into the catalog. Non-zero fields of d replace the fields of
// any existing entry for the same type.
func (c *Catalog) Add(d Data) {
	key := NormalizeType(d.Type)
	if key == "" {
		return
	}
	d.Type = key

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.entries[key]
	if !ok {
		c.entries[key] = d
		return
	}
	c.entries[key] = merge(existing, d)
}

func merge(base, over Data) Data {
	if over.Name != "" {
		base.Name = over.Name
	}
	if over.CruiseSpeedKnots > 0 {
		base.CruiseSpeedKnots = over.CruiseSpeedKnots
	}
	if over.FuelBurnLbsPerHour > 0 {
		base.FuelBurnLbsPerHour = over.FuelBurnLbsPerHour
	}
	if over.MaxFuelLbs > 0 {
		base.MaxFuelLbs = over.MaxFuelLbs
	}
	if over.PassengerWeightLbs > 0 {
		base.PassengerWeightLbs = over.PassengerWeightLbs
	}
	// A weight shape is replaced as a unit so the two shapes never mix.
	if over.UsefulLoadLbs > 0 {
		base.UsefulLoadLbs = over.UsefulLoadLbs
		base.MaxTakeoffWeightLbs = 0
		base.EmptyWeightLbs = 0
	} else if over.MaxTakeoffWeightLbs > 0 && over.EmptyWeightLbs > 0 {
		base.UsefulLoadLbs = 0
		base.MaxTakeoffWeightLbs = over.MaxTakeoffWeightLbs
		base.EmptyWeightLbs = over.EmptyWeightLbs
	}
	return base
}

// LoadFile overlays entries from a JSON array of Data. A missing file is not
// an error.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	var entries []Data
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for _, d := range entries {
		c.Add(d)
	}
	log.Printf("[CATALOG] Loaded %d entries from %s", len(entries), path)
	return nil
}

func (c *Catalog) Lookup(aircraftType string) (Data, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[NormalizeType(aircraftType)]
	return d, ok
}

func (c *Catalog) Types() []Data {
	c.mu.RLock()
	out := make([]Data, 0, len(c.entries))
	for _, d := range c.entries {
		out = append(out, d)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Resolve returns the profile for aircraftType, with measured figures for
// registration taking precedence when the registration source has them.
// When aircraftType is empty the registered type of the tail is used.
func (c *Catalog) Resolve(aircraftType, registration string) Profile {
	var measured *Measured
	registration = strings.TrimSpace(registration)
	if registration != "" && c.registrations != nil {
		if m, ok := c.registrations.Measured(registration); ok {
			measured = m
			if strings.TrimSpace(aircraftType) == "" {
				aircraftType = m.AircraftType
			}
		}
	}

	var entry *Data
	if d, ok := c.Lookup(aircraftType); ok {
		entry = &d
	}
	p := Resolve(aircraftType, entry, measured)
	if p.Registration == "" {
		p.Registration = strings.ToUpper(registration)
	}
	return p
}
