package locationflow

import (
	"context"
	"sync"
	"time"

	"github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/pkg/config"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/metrics"
)

// ManagerParams groups dependencies for the flow manager.
type ManagerParams struct {
	Ensure    func(ctx context.Context) (Provider, error)
	Locator   Geolocator
	Locations location.Service
	Metrics   *metrics.StorefrontMetrics
	Config    config.LocationFlowConfig
}

// Manager owns at most one mounted flow per session. Mounting again
// replaces the previous instance; its in-flight results never commit.
type Manager struct {
	ensure    func(ctx context.Context) (Provider, error)
	locator   Geolocator
	locations location.Service
	metrics   *metrics.StorefrontMetrics
	cfg       config.LocationFlowConfig

	mu    sync.Mutex
	flows map[string]*Flow
}

// NewManager builds a flow manager with the required dependencies.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Ensure == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider bootstrap is required")
	}
	if params.Locations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location service is required")
	}
	locator := params.Locator
	if locator != nil {
		locator = &cachedLocator{
			inner:   locator,
			ttl:     params.Config.GeolocateCacheTTL,
			timeout: params.Config.GeolocateTimeout,
		}
	}
	return &Manager{
		ensure:    params.Ensure,
		locator:   locator,
		locations: params.Locations,
		metrics:   params.Metrics,
		cfg:       params.Config,
		flows:     make(map[string]*Flow),
	}, nil
}

// Mount creates a fresh flow for the session, bootstrapping the mapping
// provider first. A bootstrap failure is surfaced to the caller and, per
// the memoized loader, to every later mount as well.
func (m *Manager) Mount(ctx context.Context, sessionID string) (StateDTO, error) {
	if sessionID == "" {
		return StateDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	provider, err := m.ensure(ctx)
	if err != nil {
		return StateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "map provider failed to load")
	}

	flow := newFlow(sessionID, provider, m.locations, m.metrics, m.cfg.DebounceInterval, m.cfg.CenterEpsilon)

	m.mu.Lock()
	if prev, ok := m.flows[sessionID]; ok {
		prev.close()
	}
	m.flows[sessionID] = flow
	m.mu.Unlock()

	return flow.State(), nil
}

// Unmount discards the session's flow and any in-flight geocode results.
func (m *Manager) Unmount(sessionID string) {
	m.mu.Lock()
	flow, ok := m.flows[sessionID]
	if ok {
		delete(m.flows, sessionID)
	}
	m.mu.Unlock()
	if ok {
		flow.close()
	}
}

// State returns the observable state of the session's flow.
func (m *Manager) State(sessionID string) (StateDTO, error) {
	flow, err := m.flow(sessionID)
	if err != nil {
		return StateDTO{}, err
	}
	return flow.State(), nil
}

// SetCenter forwards a map movement to the session's flow.
func (m *Manager) SetCenter(sessionID string, lat, lng float64) (StateDTO, error) {
	flow, err := m.flow(sessionID)
	if err != nil {
		return StateDTO{}, err
	}
	return flow.SetCenter(lat, lng, "map_idle")
}

// Search forwards a place query to the session's flow.
func (m *Manager) Search(ctx context.Context, sessionID, query string) ([]Suggestion, error) {
	flow, err := m.flow(sessionID)
	if err != nil {
		return nil, err
	}
	return flow.Search(ctx, query)
}

// SelectSuggestion recenters the session's flow on the chosen place.
func (m *Manager) SelectSuggestion(ctx context.Context, sessionID, placeID string) (StateDTO, error) {
	flow, err := m.flow(sessionID)
	if err != nil {
		return StateDTO{}, err
	}
	return flow.SelectSuggestion(ctx, placeID)
}

// UseCurrentLocation recenters the session's flow on a device fix.
func (m *Manager) UseCurrentLocation(ctx context.Context, sessionID string) (StateDTO, error) {
	flow, err := m.flow(sessionID)
	if err != nil {
		return StateDTO{}, err
	}
	return flow.UseCurrentLocation(ctx, m.locator)
}

// Confirm commits the session's flow into the delivery-location store.
func (m *Manager) Confirm(ctx context.Context, sessionID string) (location.Snapshot, error) {
	flow, err := m.flow(sessionID)
	if err != nil {
		return location.Snapshot{}, err
	}
	return flow.Confirm(ctx)
}

func (m *Manager) flow(sessionID string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flow, ok := m.flows[sessionID]
	if !ok {
		return nil, errNotMounted()
	}
	return flow, nil
}

// cachedLocator bounds each fix with a timeout and reuses a recent fix
// within the configured TTL.
type cachedLocator struct {
	inner   Geolocator
	ttl     time.Duration
	timeout time.Duration

	mu  sync.Mutex
	fix *Coordinate
	at  time.Time
}

func (l *cachedLocator) CurrentPosition(ctx context.Context) (Coordinate, error) {
	l.mu.Lock()
	if l.fix != nil && l.ttl > 0 && time.Since(l.at) < l.ttl {
		fix := *l.fix
		l.mu.Unlock()
		return fix, nil
	}
	l.mu.Unlock()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	fix, err := l.inner.CurrentPosition(ctx)
	if err != nil {
		return Coordinate{}, err
	}

	l.mu.Lock()
	l.fix = &fix
	l.at = time.Now()
	l.mu.Unlock()
	return fix, nil
}
