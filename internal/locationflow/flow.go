// Package locationflow drives the map-based delivery-location picker:
// debounced reverse geocoding of the map center, place search, one-shot
// geolocation, and the final confirm that writes the location store.
package locationflow

import (
	"context"
	"sync"
	"time"

	"github.com/kiranakart/storefront/internal/location"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/metrics"
)

// Flow is one mounted picker instance. All methods are safe for
// concurrent use; async geocode results commit only while the request
// token they were issued under is still current.
type Flow struct {
	sessionID string
	provider  Provider
	locations location.Service
	metrics   *metrics.StorefrontMetrics

	debounce time.Duration
	epsilon  float64

	mu        sync.Mutex
	phase     Phase
	center    *Coordinate
	label     string
	resolving bool

	committed *Coordinate // center whose label is already known
	pending   *Coordinate // quiescing center waiting on the debounce timer
	inflight  *Coordinate // center currently being reverse geocoded
	trigger   string
	timer     *time.Timer
	token     uint64
	cancel    context.CancelFunc
	closed    bool
}

func newFlow(sessionID string, provider Provider, locations location.Service, m *metrics.StorefrontMetrics, debounce time.Duration, epsilon float64) *Flow {
	return &Flow{
		sessionID: sessionID,
		provider:  provider,
		locations: locations,
		metrics:   m,
		debounce:  debounce,
		epsilon:   epsilon,
		phase:     PhaseIdle,
	}
}

// State returns a snapshot of the flow's observable state.
func (f *Flow) State() StateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	dto := StateDTO{Phase: f.phase, Label: f.label, Resolving: f.resolving}
	if f.center != nil {
		c := *f.center
		dto.Center = &c
	}
	return dto
}

// SetCenter records a map movement. The reverse geocode dispatches only
// after the center quiesces for the debounce interval; centers within
// epsilon of the committed, in-flight, or already-scheduled center do
// not re-dispatch.
func (f *Flow) SetCenter(lat, lng float64, trigger string) (StateDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return StateDTO{}, errNotMounted()
	}

	c := Coordinate{Latitude: lat, Longitude: lng}
	f.phase = PhaseCentered
	f.center = &c

	if f.committed != nil && within(c, *f.committed, f.epsilon) && f.label != "" {
		return f.stateLocked(), nil
	}
	if f.inflight != nil && within(c, *f.inflight, f.epsilon) {
		return f.stateLocked(), nil
	}
	if f.pending != nil && within(c, *f.pending, f.epsilon) {
		return f.stateLocked(), nil
	}

	f.pending = &c
	f.trigger = trigger
	f.label = ""
	f.resolving = true
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, f.dispatch)
	return f.stateLocked(), nil
}

// dispatch fires when the debounce timer quiesces. It supersedes any
// in-flight geocode and starts resolving the latest pending center.
func (f *Flow) dispatch() {
	f.mu.Lock()
	if f.closed || f.pending == nil {
		f.mu.Unlock()
		return
	}
	c := *f.pending
	f.pending = nil
	f.inflight = &c
	f.token++
	token := f.token
	trigger := f.trigger
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.mu.Unlock()

	f.metrics.IncGeocodeDispatched(trigger)

	go func() {
		name, err := f.provider.ReverseGeocode(ctx, c.Latitude, c.Longitude)
		fellBack := false
		if err != nil {
			if ctx.Err() != nil {
				f.metrics.IncGeocodeDiscarded("canceled")
				return
			}
			name = fallbackLabel(c)
			fellBack = true
		}
		f.commit(c, token, name, fellBack)
	}()
}

// commit applies a completed geocode result if it is still current.
func (f *Flow) commit(c Coordinate, token uint64, name string, fellBack bool) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.metrics.IncGeocodeDiscarded("unmounted")
		return
	}
	if token != f.token || f.pending != nil {
		f.mu.Unlock()
		f.metrics.IncGeocodeDiscarded("superseded")
		return
	}
	f.label = name
	f.committed = &c
	f.inflight = nil
	f.resolving = false
	f.mu.Unlock()

	if fellBack {
		f.metrics.IncGeocodeFallback()
	}
}

// Search enters the searching phase and returns place suggestions.
func (f *Flow) Search(ctx context.Context, query string) ([]Suggestion, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errNotMounted()
	}
	f.phase = PhaseSearching
	f.mu.Unlock()

	results, err := f.provider.Autocomplete(ctx, autocompleteRequest(query))
	if err != nil {
		return nil, err
	}
	suggestions := make([]Suggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, Suggestion{PlaceID: r.PlaceID, Description: r.Description})
	}
	return suggestions, nil
}

// SelectSuggestion recenters on the chosen place using its own formatted
// address, skipping the redundant reverse geocode. Any scheduled or
// in-flight geocode is invalidated.
func (f *Flow) SelectSuggestion(ctx context.Context, placeID string) (StateDTO, error) {
	place, err := f.provider.ResolvePlace(ctx, placeID)
	if err != nil {
		return StateDTO{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return StateDTO{}, errNotMounted()
	}

	f.invalidateLocked()
	c := Coordinate{Latitude: place.Location.Latitude, Longitude: place.Location.Longitude}
	f.center = &c
	f.committed = &c
	f.label = place.FormattedAddress
	f.resolving = false
	f.phase = PhaseCentered
	return f.stateLocked(), nil
}

// UseCurrentLocation recenters on a one-shot device fix. Locator failure
// propagates unchanged and leaves the flow state untouched.
func (f *Flow) UseCurrentLocation(ctx context.Context, locator Geolocator) (StateDTO, error) {
	if locator == nil {
		return StateDTO{}, pkgerrors.New(pkgerrors.CodeDependency, "geolocation is not available")
	}
	fix, err := locator.CurrentPosition(ctx)
	if err != nil {
		return StateDTO{}, err
	}
	return f.SetCenter(fix.Latitude, fix.Longitude, "geolocate")
}

// Confirm writes the centered coordinate and its label to the location
// store and ends the flow. A missing label falls back to the synthetic
// coordinate name rather than blocking.
func (f *Flow) Confirm(ctx context.Context) (location.Snapshot, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return location.Snapshot{}, errNotMounted()
	}
	if f.center == nil {
		f.mu.Unlock()
		return location.Snapshot{}, pkgerrors.New(pkgerrors.CodePrecondition, "no map center to confirm")
	}
	c := *f.center
	name := f.label
	fellBack := false
	if name == "" {
		name = fallbackLabel(c)
		fellBack = true
	}
	f.invalidateLocked()
	f.mu.Unlock()

	snapshot, err := f.locations.Set(ctx, f.sessionID, location.SetInput{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Name:      name,
	})
	if err != nil {
		return location.Snapshot{}, err
	}

	f.mu.Lock()
	f.phase = PhaseConfirmed
	f.resolving = false
	f.label = name
	f.mu.Unlock()

	if fellBack {
		f.metrics.IncGeocodeFallback()
	}
	return snapshot, nil
}

// close discards the flow. Results of any in-flight geocode will fail
// the generation check and never commit.
func (f *Flow) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.invalidateLocked()
}

// invalidateLocked cancels scheduled and in-flight geocodes. Callers hold f.mu.
func (f *Flow) invalidateLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.pending = nil
	f.inflight = nil
	f.token++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Flow) stateLocked() StateDTO {
	dto := StateDTO{Phase: f.phase, Label: f.label, Resolving: f.resolving}
	if f.center != nil {
		c := *f.center
		dto.Center = &c
	}
	return dto
}

func errNotMounted() error {
	return pkgerrors.New(pkgerrors.CodePrecondition, "location flow is not mounted")
}
