package lookup

import (
	"errors"
	"testing"
	"time"

	"heliroute/internal/performance"
)

type mockRepo struct {
	rows     map[string]*performance.Measured
	err      error
	getCalls int
	saved    []*performance.Measured
}

func (m *mockRepo) GetRegistration(reg string) (*performance.Measured, error) {
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rows[reg], nil
}

func (m *mockRepo) SaveRegistration(meas *performance.Measured) error {
	m.saved = append(m.saved, meas)
	return nil
}

func TestRegistryCachesHits(t *testing.T) {
	repo := &mockRepo{rows: map[string]*performance.Measured{
		"N139HX": {Registration: "N139HX", AircraftType: "AW139", CruiseSpeedKnots: 148},
	}}
	r := NewRegistry(repo, 8, time.Minute)

	for i := 0; i < 3; i++ {
		m, ok := r.Measured(" n139hx ")
		if !ok || m.CruiseSpeedKnots != 148 {
			t.Fatalf("unexpected lookup result %+v %v", m, ok)
		}
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected one repository call got %d", repo.getCalls)
	}
}

func TestRegistryCachesMisses(t *testing.T) {
	repo := &mockRepo{rows: map[string]*performance.Measured{}}
	r := NewRegistry(repo, 8, time.Minute)

	for i := 0; i < 2; i++ {
		if _, ok := r.Measured("N404"); ok {
			t.Fatal("expected miss")
		}
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected one repository call got %d", repo.getCalls)
	}
}

func TestRegistryDoesNotCacheErrors(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	r := NewRegistry(repo, 8, time.Minute)

	r.Measured("N1")
	r.Measured("N1")
	if repo.getCalls != 2 {
		t.Fatalf("errors should not be cached, got %d calls", repo.getCalls)
	}
}

func TestRegistryRecordWithoutRepository(t *testing.T) {
	r := NewRegistry(nil, 8, time.Minute)
	if err := r.Record(performance.Measured{Registration: "c-gxyz", FuelBurnLbsPerHour: 950}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	m, ok := r.Measured("C-GXYZ")
	if !ok || m.FuelBurnLbsPerHour != 950 || m.UpdatedAt.IsZero() {
		t.Fatalf("unexpected lookup result %+v %v", m, ok)
	}

	if err := r.Record(performance.Measured{}); err == nil {
		t.Fatal("expected error for empty registration")
	}
	if err := r.Record(performance.Measured{Registration: "N1", CruiseSpeedKnots: -1}); err == nil {
		t.Fatal("expected error for negative cruise")
	}
}

func TestRegistryRecordPersists(t *testing.T) {
	repo := &mockRepo{rows: map[string]*performance.Measured{}}
	r := NewRegistry(repo, 8, time.Minute)
	if _, ok := r.Measured("N2"); ok {
		t.Fatal("expected miss before record")
	}

	if err := r.Record(performance.Measured{Registration: "N2", CruiseSpeedKnots: 140}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one save got %d", len(repo.saved))
	}
	if m, ok := r.Measured("N2"); !ok || m.CruiseSpeedKnots != 140 {
		t.Fatalf("cached miss should be replaced by the recorded tail, got %+v %v", m, ok)
	}
}

func TestRegistryFeedsCatalog(t *testing.T) {
	r := NewRegistry(nil, 8, time.Minute)
	if err := r.Record(performance.Measured{Registration: "N76SK", AircraftType: "S76D", CruiseSpeedKnots: 155}); err != nil {
		t.Fatal(err)
	}
	p := performance.NewCatalog(r).Resolve("", "N76SK")
	if p.Type != "S76D" || p.CruiseSpeedKnots != 155 || p.FuelBurnLbsPerHour != 800 {
		t.Fatalf("unexpected resolved profile %+v", p)
	}
}
