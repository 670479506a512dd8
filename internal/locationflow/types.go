package locationflow

import (
	"context"
	"math"
	"strconv"

	"github.com/kiranakart/storefront/pkg/maps"
)

// Phase is the lifecycle stage of a mounted flow.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCentered  Phase = "centered"
	PhaseSearching Phase = "searching"
	PhaseConfirmed Phase = "confirmed"
)

// Coordinate is a latitude/longitude pair on the map.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func within(a, b Coordinate, epsilon float64) bool {
	return math.Abs(a.Latitude-b.Latitude) <= epsilon &&
		math.Abs(a.Longitude-b.Longitude) <= epsilon
}

// fallbackLabel is the synthetic name used when reverse geocoding cannot
// produce one. Confirm never blocks on a geocode outage.
func fallbackLabel(c Coordinate) string {
	return "Location at " + strconv.FormatFloat(c.Latitude, 'f', -1, 64) +
		", " + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Provider is the mapping surface a flow needs. *maps.Client satisfies it.
type Provider interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID string) (*maps.PlaceDetails, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Geolocator produces a one-shot device position fix.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// GeolocatorFunc adapts a plain function to the Geolocator interface.
type GeolocatorFunc func(ctx context.Context) (Coordinate, error)

func (f GeolocatorFunc) CurrentPosition(ctx context.Context) (Coordinate, error) {
	return f(ctx)
}

func autocompleteRequest(query string) maps.AutocompleteRequest {
	return maps.AutocompleteRequest{
		Input:               query,
		IncludedRegionCodes: []string{"IN"},
	}
}

// Suggestion is one autocomplete result offered to the user.
type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// StateDTO is the observable state of a mounted flow.
type StateDTO struct {
	Phase     Phase       `json:"phase"`
	Center    *Coordinate `json:"center,omitempty"`
	Label     string      `json:"label,omitempty"`
	Resolving bool        `json:"resolving"`
}
