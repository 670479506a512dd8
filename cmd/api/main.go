package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kiranakart/storefront/api/routes"
	"github.com/kiranakart/storefront/internal/cart"
	"github.com/kiranakart/storefront/internal/catalog"
	"github.com/kiranakart/storefront/internal/checkout"
	"github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/internal/locationflow"
	"github.com/kiranakart/storefront/internal/navigation"
	"github.com/kiranakart/storefront/internal/profile"
	"github.com/kiranakart/storefront/internal/session"
	"github.com/kiranakart/storefront/internal/state"
	"github.com/kiranakart/storefront/internal/wishlist"
	"github.com/kiranakart/storefront/pkg/backend"
	"github.com/kiranakart/storefront/pkg/config"
	"github.com/kiranakart/storefront/pkg/logger"
	"github.com/kiranakart/storefront/pkg/maps"
	"github.com/kiranakart/storefront/pkg/metrics"
	"github.com/kiranakart/storefront/pkg/redis"
)

// geocodeProvider tries the mapping provider first and falls back to the
// backend's resolve-location-name function when it fails.
type geocodeProvider struct {
	*maps.Client
	backend *backend.Client
}

func (p geocodeProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	name, err := p.Client.ReverseGeocode(ctx, lat, lng)
	if err == nil {
		return name, nil
	}
	return p.backend.ResolveLocationName(ctx, lat, lng)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	backendClient, err := backend.NewClient(cfg.Backend)
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}

	mapsLoader := maps.NewLoader(func(ctx context.Context) (*maps.Client, error) {
		opts := []maps.Option{}
		if cfg.Maps.BaseURL != "" {
			opts = append(opts,
				maps.WithPlacesBaseURL(cfg.Maps.BaseURL),
				maps.WithGeocodeBaseURL(cfg.Maps.BaseURL),
				maps.WithGeolocateBaseURL(cfg.Maps.BaseURL),
			)
		}
		return maps.NewClient(cfg.Maps.APIKey, opts...)
	})

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	persister, err := state.NewRedisPersister(redisClient, cfg.Session.StateTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build state persister", err)
		os.Exit(1)
	}
	locks := state.NewSessionLocks()

	cartService, err := cart.NewService(cart.ServiceParams{Persister: persister, Locks: locks})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Persister: persister,
		Locks:     locks,
		Rows:      backendClient,
		Cart:      cartService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	locationService, err := location.NewService(location.ServiceParams{Persister: persister, Locks: locks})
	if err != nil {
		logg.Error(context.Background(), "failed to create location service", err)
		os.Exit(1)
	}

	flowManager, err := locationflow.NewManager(locationflow.ManagerParams{
		Ensure: func(ctx context.Context) (locationflow.Provider, error) {
			client, err := mapsLoader.Ensure(ctx)
			if err != nil {
				return nil, err
			}
			return geocodeProvider{Client: client, backend: backendClient}, nil
		},
		Locator: locationflow.GeolocatorFunc(func(ctx context.Context) (locationflow.Coordinate, error) {
			client, err := mapsLoader.Ensure(ctx)
			if err != nil {
				return locationflow.Coordinate{}, err
			}
			fix, err := client.Geolocate(ctx)
			if err != nil {
				return locationflow.Coordinate{}, err
			}
			return locationflow.Coordinate{Latitude: fix.Latitude, Longitude: fix.Longitude}, nil
		}),
		Locations: locationService,
		Metrics:   storeMetrics,
		Config:    cfg.LocationFlow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create location flow manager", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:      cartService,
		Locations: locationService,
		Backend:   backendClient,
		Metrics:   storeMetrics,
		Logger:    logg,
		Config:    cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{Backend: backendClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	profileService, err := profile.NewService(profile.ServiceParams{
		Backend:   backendClient,
		Locations: locationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	sessionService, err := session.NewService(session.ServiceParams{
		Auth:     backendClient,
		Cart:     cartService,
		Wishlist: wishlistService,
		Config:   cfg.Session,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			Redis:      redisClient,
			Metrics:    storeMetrics,
			Registry:   registry,
			Sessions:   sessionService,
			Cart:       cartService,
			Wishlist:   wishlistService,
			Locations:  locationService,
			Flow:       flowManager,
			Checkout:   checkoutService,
			Catalog:    catalogService,
			Profile:    profileService,
			Orders:     backendClient,
			Navigation: navigation.NewStack(),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
