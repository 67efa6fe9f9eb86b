// Package routing looks up street-following paths between design points.
// Routing is cosmetic enrichment: every lookup falls back to a straight
// line when the routing service fails, times out or has no route.
package routing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/geo"
)

// Router returns an ordered path from one coordinate to another.
type Router interface {
	Route(ctx context.Context, from, to design.LatLon) ([]design.LatLon, error)
}

// Path is a resolved route.
type Path struct {
	Coords   []design.LatLon `json:"coords" yaml:"coords"`
	LengthKm float64         `json:"length_km" yaml:"length_km"`
	// Routed is false when the straight-line fallback was used.
	Routed bool `json:"routed" yaml:"routed"`
}

// Straight returns the two-point path between from and to.
func Straight(from, to design.LatLon) []design.LatLon {
	return []design.LatLon{from, to}
}

// Fallback wraps a Router so that lookups never fail.
type Fallback struct {
	next    Router
	timeout time.Duration
	log     *zap.Logger
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

// WithLookupTimeout bounds each lookup. Zero leaves the caller's context
// deadline as the only bound.
func WithLookupTimeout(d time.Duration) FallbackOption {
	return func(f *Fallback) { f.timeout = d }
}

// WithFallbackLogger sets the logger used to report substituted routes.
func WithFallbackLogger(log *zap.Logger) FallbackOption {
	return func(f *Fallback) {
		if log != nil {
			f.log = log
		}
	}
}

// WithFallback wraps next. A nil next always yields straight lines.
func WithFallback(next Router, opts ...FallbackOption) *Fallback {
	f := &Fallback{next: next, log: zap.L()}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With(zap.String("component", "routing"))
	return f
}

// Path resolves a route, substituting a straight line on any error.
func (f *Fallback) Path(ctx context.Context, from, to design.LatLon) Path {
	coords, err := f.lookup(ctx, from, to)
	if err != nil {
		if f.next != nil {
			f.log.Warn("routing: using straight line",
				zap.Float64("from_lat", from.Lat),
				zap.Float64("from_lon", from.Lon),
				zap.Float64("to_lat", to.Lat),
				zap.Float64("to_lon", to.Lon),
				zap.Error(err),
			)
		}
		coords = Straight(from, to)
		return Path{Coords: coords, LengthKm: geo.PolylineLengthKm(coords)}
	}
	return Path{Coords: coords, LengthKm: geo.PolylineLengthKm(coords), Routed: true}
}

// Route implements Router. It never returns an error.
func (f *Fallback) Route(ctx context.Context, from, to design.LatLon) ([]design.LatLon, error) {
	return f.Path(ctx, from, to).Coords, nil
}

func (f *Fallback) lookup(ctx context.Context, from, to design.LatLon) ([]design.LatLon, error) {
	if f.next == nil {
		return nil, ErrDisabled
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	coords, err := f.next.Route(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(coords) < 2 {
		return nil, ErrNoRoute
	}
	return coords, nil
}

// RouteOrStraight resolves one route through r, falling back to a straight
// line on any failure.
func RouteOrStraight(ctx context.Context, r Router, from, to design.LatLon) []design.LatLon {
	return WithFallback(r).Path(ctx, from, to).Coords
}
