package locationflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/internal/state"
	"github.com/kiranakart/storefront/pkg/config"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/maps"
)

type fakeProvider struct {
	mu          sync.Mutex
	geocodes    []Coordinate
	names       map[string]string
	delay       time.Duration
	geocodeErr  error
	suggestions []maps.AutocompleteSuggestion
	place       *maps.PlaceDetails
}

func coordKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

func (p *fakeProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	p.mu.Lock()
	p.geocodes = append(p.geocodes, Coordinate{Latitude: lat, Longitude: lng})
	delay := p.delay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if p.geocodeErr != nil {
		return "", p.geocodeErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if name, ok := p.names[coordKey(lat, lng)]; ok {
		return name, nil
	}
	return "Somewhere", nil
}

func (p *fakeProvider) geocodeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.geocodes)
}

func (p *fakeProvider) Autocomplete(_ context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error) {
	if req.Input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}
	return p.suggestions, nil
}

func (p *fakeProvider) ResolvePlace(context.Context, string) (*maps.PlaceDetails, error) {
	if p.place == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
	}
	return p.place, nil
}

type fixedLocator struct {
	fix   Coordinate
	err   error
	calls int
}

func (l *fixedLocator) CurrentPosition(context.Context) (Coordinate, error) {
	l.calls++
	if l.err != nil {
		return Coordinate{}, l.err
	}
	return l.fix, nil
}

func flowConfig() config.LocationFlowConfig {
	return config.LocationFlowConfig{
		DebounceInterval:   10 * time.Millisecond,
		CenterEpsilon:      1e-6,
		GeolocateTimeout:   time.Second,
		GeolocateCacheTTL:  time.Minute,
		ReverseGeocodeWait: time.Second,
	}
}

func newTestManager(t *testing.T, provider Provider, locator Geolocator) (*Manager, location.Service) {
	t.Helper()
	locations, err := location.NewService(location.ServiceParams{
		Persister: state.NewMemoryPersister(),
		Locks:     state.NewSessionLocks(),
	})
	if err != nil {
		t.Fatalf("new location service: %v", err)
	}
	manager, err := NewManager(ManagerParams{
		Ensure:    func(context.Context) (Provider, error) { return provider, nil },
		Locator:   locator,
		Locations: locations,
		Config:    flowConfig(),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager, locations
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestDebounceDispatchesOnlyLatestCenter(t *testing.T) {
	provider := &fakeProvider{names: map[string]string{
		coordKey(12.9716, 77.5946): "MG Road, Bengaluru",
	}}
	manager, _ := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	// rapid drags; only the final quiesced center should geocode
	for _, lat := range []float64{12.90, 12.93, 12.95} {
		if _, err := manager.SetCenter("s1", lat, 77.50); err != nil {
			t.Fatalf("set center: %v", err)
		}
	}
	if _, err := manager.SetCenter("s1", 12.9716, 77.5946); err != nil {
		t.Fatalf("set final center: %v", err)
	}

	waitFor(t, func() bool {
		dto, err := manager.State("s1")
		return err == nil && !dto.Resolving && dto.Label != ""
	})

	dto, err := manager.State("s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if dto.Label != "MG Road, Bengaluru" {
		t.Fatalf("unexpected label %q", dto.Label)
	}
	if got := provider.geocodeCount(); got != 1 {
		t.Fatalf("expected exactly one geocode, got %d", got)
	}
}

func TestEpsilonGuardSkipsRedundantGeocode(t *testing.T) {
	provider := &fakeProvider{names: map[string]string{
		coordKey(12.9716, 77.5946): "MG Road, Bengaluru",
	}}
	manager, _ := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := manager.SetCenter("s1", 12.9716, 77.5946); err != nil {
		t.Fatalf("set center: %v", err)
	}
	waitFor(t, func() bool {
		dto, err := manager.State("s1")
		return err == nil && dto.Label == "MG Road, Bengaluru"
	})

	// a nudge inside the epsilon must not re-dispatch or clear the label
	dto, err := manager.SetCenter("s1", 12.9716+5e-7, 77.5946-5e-7)
	if err != nil {
		t.Fatalf("set center: %v", err)
	}
	if dto.Label != "MG Road, Bengaluru" || dto.Resolving {
		t.Fatalf("epsilon move should keep the committed label, got %+v", dto)
	}
	time.Sleep(50 * time.Millisecond)
	if got := provider.geocodeCount(); got != 1 {
		t.Fatalf("expected one geocode after epsilon move, got %d", got)
	}
}

func TestSupersededResultNeverCommits(t *testing.T) {
	provider := &fakeProvider{
		delay: 20 * time.Millisecond,
		names: map[string]string{
			coordKey(10, 10): "First",
			coordKey(20, 20): "Second",
		},
	}
	manager, _ := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := manager.SetCenter("s1", 10, 10); err != nil {
		t.Fatalf("first center: %v", err)
	}
	waitFor(t, func() bool { return provider.geocodeCount() == 1 })

	if _, err := manager.SetCenter("s1", 20, 20); err != nil {
		t.Fatalf("second center: %v", err)
	}
	waitFor(t, func() bool {
		dto, err := manager.State("s1")
		return err == nil && !dto.Resolving && dto.Label != ""
	})

	dto, err := manager.State("s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if dto.Label != "Second" {
		t.Fatalf("superseded result leaked: label %q", dto.Label)
	}
}

func TestGeocodeFailureFallsBackToCoordinateLabel(t *testing.T) {
	provider := &fakeProvider{geocodeErr: errors.New("provider down")}
	manager, _ := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := manager.SetCenter("s1", 12.9716, 77.5946); err != nil {
		t.Fatalf("set center: %v", err)
	}
	waitFor(t, func() bool {
		dto, err := manager.State("s1")
		return err == nil && !dto.Resolving
	})

	dto, _ := manager.State("s1")
	if dto.Label != "Location at 12.9716, 77.5946" {
		t.Fatalf("unexpected fallback label %q", dto.Label)
	}

	// confirm still succeeds against the outage
	snapshot, err := manager.Confirm(ctx, "s1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if snapshot.Name != "Location at 12.9716, 77.5946" {
		t.Fatalf("unexpected confirmed name %q", snapshot.Name)
	}
}

func TestSelectSuggestionSkipsReverseGeocode(t *testing.T) {
	provider := &fakeProvider{
		suggestions: []maps.AutocompleteSuggestion{{PlaceID: "pl1", Description: "Koramangala"}},
		place: &maps.PlaceDetails{
			PlaceID:          "pl1",
			FormattedAddress: "Koramangala, Bengaluru",
			Location:         maps.LatLng{Latitude: 12.9352, Longitude: 77.6245},
		},
	}
	manager, _ := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	suggestions, err := manager.Search(ctx, "s1", "kora")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].PlaceID != "pl1" {
		t.Fatalf("unexpected suggestions %+v", suggestions)
	}
	if dto, _ := manager.State("s1"); dto.Phase != PhaseSearching {
		t.Fatalf("expected searching phase, got %s", dto.Phase)
	}

	dto, err := manager.SelectSuggestion(ctx, "s1", "pl1")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if dto.Label != "Koramangala, Bengaluru" || dto.Resolving {
		t.Fatalf("expected place address without geocode, got %+v", dto)
	}
	if dto.Center == nil || dto.Center.Latitude != 12.9352 {
		t.Fatalf("expected recentered map, got %+v", dto.Center)
	}
	time.Sleep(50 * time.Millisecond)
	if provider.geocodeCount() != 0 {
		t.Fatal("selecting a place must not reverse geocode")
	}
}

func TestUseCurrentLocationFailureLeavesStateUntouched(t *testing.T) {
	provider := &fakeProvider{}
	locator := &fixedLocator{err: pkgerrors.New(pkgerrors.CodePermission, "location permission denied")}
	manager, _ := newTestManager(t, provider, locator)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	before, _ := manager.State("s1")

	_, err := manager.UseCurrentLocation(ctx, "s1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePermission {
		t.Fatalf("expected permission error, got %v", err)
	}

	after, _ := manager.State("s1")
	if after.Phase != before.Phase || after.Center != nil {
		t.Fatalf("flow state changed after locator failure: %+v", after)
	}
}

func TestUseCurrentLocationRecentersFromFix(t *testing.T) {
	provider := &fakeProvider{names: map[string]string{
		coordKey(12.9352, 77.6245): "Koramangala, Bengaluru",
	}}
	locator := &fixedLocator{fix: Coordinate{Latitude: 12.9352, Longitude: 77.6245}}
	manager, _ := newTestManager(t, provider, locator)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	dto, err := manager.UseCurrentLocation(ctx, "s1")
	if err != nil {
		t.Fatalf("use current location: %v", err)
	}
	if dto.Center == nil || dto.Center.Latitude != 12.9352 {
		t.Fatalf("expected recentered flow, got %+v", dto.Center)
	}
	waitFor(t, func() bool {
		s, err := manager.State("s1")
		return err == nil && s.Label == "Koramangala, Bengaluru"
	})

	// a second fix within the cache TTL reuses the first
	if _, err := manager.UseCurrentLocation(ctx, "s1"); err != nil {
		t.Fatalf("second use: %v", err)
	}
	if locator.calls != 1 {
		t.Fatalf("expected cached fix, locator called %d times", locator.calls)
	}
}

func TestConfirmWritesLocationStore(t *testing.T) {
	provider := &fakeProvider{names: map[string]string{
		coordKey(12.9716, 77.5946): "MG Road, Bengaluru",
	}}
	manager, locations := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := manager.SetCenter("s1", 12.9716, 77.5946); err != nil {
		t.Fatalf("set center: %v", err)
	}
	waitFor(t, func() bool {
		dto, err := manager.State("s1")
		return err == nil && dto.Label != ""
	})

	snapshot, err := manager.Confirm(ctx, "s1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if snapshot.Name != "MG Road, Bengaluru" {
		t.Fatalf("unexpected confirmed name %q", snapshot.Name)
	}

	stored, err := locations.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if !stored.IsSet() || *stored.Latitude != 12.9716 || stored.Name != "MG Road, Bengaluru" {
		t.Fatalf("location store not updated: %+v", stored)
	}

	if dto, _ := manager.State("s1"); dto.Phase != PhaseConfirmed {
		t.Fatalf("expected confirmed phase, got %s", dto.Phase)
	}
}

func TestConfirmWithoutCenterIsPrecondition(t *testing.T) {
	manager, _ := newTestManager(t, &fakeProvider{}, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	_, err := manager.Confirm(ctx, "s1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePrecondition {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestUnmountDiscardsInFlightResult(t *testing.T) {
	provider := &fakeProvider{
		delay: 20 * time.Millisecond,
		names: map[string]string{coordKey(10, 10): "Late"},
	}
	manager, locations := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := manager.SetCenter("s1", 10, 10); err != nil {
		t.Fatalf("set center: %v", err)
	}
	waitFor(t, func() bool { return provider.geocodeCount() == 1 })
	manager.Unmount("s1")

	time.Sleep(40 * time.Millisecond)
	if _, err := manager.State("s1"); err == nil {
		t.Fatal("expected unmounted flow")
	}
	stored, err := locations.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if stored.IsSet() {
		t.Fatal("unmounted flow must not write the location store")
	}
}

func TestRemountReplacesFlow(t *testing.T) {
	provider := &fakeProvider{}
	manager, _ := newTestManager(t, provider, nil)
	ctx := context.Background()

	if _, err := manager.Mount(ctx, "s1"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := manager.SetCenter("s1", 10, 10); err != nil {
		t.Fatalf("set center: %v", err)
	}
	dto, err := manager.Mount(ctx, "s1")
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	if dto.Phase != PhaseIdle || dto.Center != nil {
		t.Fatalf("remount should start fresh, got %+v", dto)
	}
}

func TestMountSurfacesBootstrapFailure(t *testing.T) {
	locations, err := location.NewService(location.ServiceParams{
		Persister: state.NewMemoryPersister(),
		Locks:     state.NewSessionLocks(),
	})
	if err != nil {
		t.Fatalf("new location service: %v", err)
	}
	manager, err := NewManager(ManagerParams{
		Ensure: func(context.Context) (Provider, error) {
			return nil, errors.New("script failed to load")
		},
		Locations: locations,
		Config:    flowConfig(),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	_, err = manager.Mount(context.Background(), "s1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
