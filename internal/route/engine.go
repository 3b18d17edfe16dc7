package route

import (
	"log/slog"

	"heliroute/internal/performance"
	"heliroute/pkg/models"
)

type EngineOptions struct {
	Profiles ProfileResolver
	// Wind may be nil, in which case every route is computed in still air.
	Wind   WindAdjuster
	Store  *Store
	Logger *slog.Logger
}

// Engine is the route recomputation pipeline: legs, aggregate, publish.
type Engine struct {
	profiles ProfileResolver
	wind     WindAdjuster
	store    *Store
	logger   *slog.Logger
}

func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		profiles: opts.Profiles,
		wind:     opts.Wind,
		store:    opts.Store,
		logger:   opts.Logger,
	}
	if e.profiles == nil {
		e.profiles = performance.NewCatalog(nil)
	}
	if e.store == nil {
		e.store = NewStore()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

func (e *Engine) Store() *Store {
	return e.store
}

// CalculateRouteStats computes statistics for wps and publishes them as the
// new current snapshot. Waypoints without valid coordinates must be filtered
// by the caller (see models.ValidWaypoints).
func (e *Engine) CalculateRouteStats(wps []models.Waypoint, opts Options) RouteStats {
	p := e.profiles.Resolve(opts.AircraftType, opts.Registration)
	legs := BuildLegs(wps, p, opts.Wind, e.wind)
	stats := Aggregate(legs, p, opts.payload(), opts.reserve(), opts.Wind)

	e.logWarnings("route calculated", stats)
	snap := e.store.Publish(stats, "calculate")
	e.logger.Debug("route snapshot published",
		slog.Uint64("version", snap.Version),
		slog.Int("legs", len(stats.Legs)),
		slog.Float64("distance_nm", stats.TotalDistanceNm),
		slog.String("ete", stats.EstimatedTime))
	return stats
}

// RepairRouteStats checks candidate and, if its timing is missing or
// implausible, regenerates it and publishes the result. The check and the
// write happen under the store lock in one call. A valid candidate is
// returned as is and nothing is published.
func (e *Engine) RepairRouteStats(candidate RouteStats, rc RepairContext) (RouteStats, State) {
	rc = e.completeContext(candidate, rc)

	var out RouteStats
	var state State
	e.store.Update(func(Snapshot, bool) (RouteStats, string, bool) {
		out, state = e.repair(candidate, rc)
		return out, "repair", state == StateRepaired
	})
	return out, state
}

// RepairCurrent runs the repair protocol on the store's current snapshot.
// ok is false when nothing has been published yet.
func (e *Engine) RepairCurrent(rc RepairContext) (stats RouteStats, state State, ok bool) {
	e.store.Update(func(cur Snapshot, have bool) (RouteStats, string, bool) {
		if !have {
			return RouteStats{}, "", false
		}
		ok = true
		stats, state = e.repair(cur.Stats, e.completeContext(cur.Stats, rc))
		return stats, "repair", state == StateRepaired
	})
	return stats, state, ok
}

func (e *Engine) repair(candidate RouteStats, rc RepairContext) (RouteStats, State) {
	p := performance.Complete(*rc.Profile)
	detected := Diagnose(candidate, p.CruiseSpeedKnots)
	if detected == StateValid {
		return candidate, StateValid
	}

	repaired := Repair(candidate, rc, e.wind)
	e.logger.Warn("route timing repaired",
		slog.String("detected", string(detected)),
		slog.Float64("stale_hours", candidate.TimeHours),
		slog.Float64("repaired_hours", repaired.TimeHours),
		slog.String("ete", repaired.EstimatedTime))
	e.logWarnings("route repaired", repaired)
	return repaired, StateRepaired
}

// completeContext resolves the profile the candidate was computed for when
// the caller did not supply one and the candidate's own copy is partial.
func (e *Engine) completeContext(candidate RouteStats, rc RepairContext) RepairContext {
	if rc.Profile != nil {
		return rc
	}
	p := candidate.Aircraft
	if p.CruiseSpeedKnots <= 0 || p.FuelBurnLbsPerHour <= 0 {
		p = e.profiles.Resolve(p.Type, p.Registration)
	}
	rc.Profile = &p
	return rc
}

func (e *Engine) logWarnings(msg string, s RouteStats) {
	for _, w := range s.Warnings {
		if w == WarnTimingRegenerated || w == WarnTimingNaiveEstimated {
			continue
		}
		e.logger.Warn(msg,
			slog.String("warning", w),
			slog.String("aircraft", s.Aircraft.Type),
			slog.Float64("fuel_required_lbs", s.FuelRequiredLbs),
			slog.Float64("usable_load_lbs", s.UsableLoadLbs))
	}
}
