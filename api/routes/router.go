package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiranakart/storefront/api/controllers"
	"github.com/kiranakart/storefront/api/middleware"
	"github.com/kiranakart/storefront/api/responses"
	cartsvc "github.com/kiranakart/storefront/internal/cart"
	catalogsvc "github.com/kiranakart/storefront/internal/catalog"
	checkoutsvc "github.com/kiranakart/storefront/internal/checkout"
	locationsvc "github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/internal/locationflow"
	"github.com/kiranakart/storefront/internal/navigation"
	profilesvc "github.com/kiranakart/storefront/internal/profile"
	sessionsvc "github.com/kiranakart/storefront/internal/session"
	wishlistsvc "github.com/kiranakart/storefront/internal/wishlist"
	"github.com/kiranakart/storefront/pkg/config"
	"github.com/kiranakart/storefront/pkg/logger"
	"github.com/kiranakart/storefront/pkg/metrics"
	"github.com/kiranakart/storefront/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       redis.Pinger
	Metrics     *metrics.StorefrontMetrics
	Registry    *prometheus.Registry
	Sessions    sessionsvc.Service
	Cart        cartsvc.Service
	Wishlist    wishlistsvc.Service
	Locations   locationsvc.Service
	Flow        *locationflow.Manager
	Checkout    checkoutsvc.Service
	Catalog     catalogsvc.Service
	Profile     profilesvc.Service
	Orders      controllers.OrdersBackend
	Navigation  *navigation.Stack
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(deps.Sessions, cfg.Session, logg))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			responses.WriteSuccess(w, map[string]string{"service": "kiranakart-storefront", "env": cfg.App.Env})
		})

		r.Route("/api/v1/session", func(r chi.Router) {
			r.Post("/signin", controllers.SignIn(deps.Sessions, logg))
			r.Post("/signup", controllers.SignUp(deps.Sessions, logg))
			r.Post("/signout", controllers.SignOut(deps.Sessions, logg))
			r.Get("/revalidate", controllers.Revalidate(deps.Sessions, logg))
			r.Post("/cart-prompt", controllers.ResolveCartPrompt(deps.Sessions, logg))
		})

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/items/{productId}", controllers.CartUpdateQuantity(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/api/v1/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/items", controllers.WishlistAddItem(deps.Wishlist, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemoveItem(deps.Wishlist, logg))
			r.Post("/items/{productId}/move-to-cart", controllers.WishlistMoveToCart(deps.Wishlist, logg))
		})

		r.Route("/api/v1/delivery-location", func(r chi.Router) {
			r.Get("/", controllers.DeliveryLocationGet(deps.Locations, logg))
			r.Delete("/", controllers.DeliveryLocationClear(deps.Locations, logg))
			r.Route("/flow", func(r chi.Router) {
				r.Post("/mount", controllers.FlowMount(deps.Flow, logg))
				r.Delete("/", controllers.FlowUnmount(deps.Flow, logg))
				r.Get("/", controllers.FlowState(deps.Flow, logg))
				r.Post("/center", controllers.FlowSetCenter(deps.Flow, logg))
				r.Get("/search", controllers.FlowSearch(deps.Flow, logg))
				r.Post("/select", controllers.FlowSelectSuggestion(deps.Flow, logg))
				r.Post("/use-current-location", controllers.FlowUseCurrentLocation(deps.Flow, logg))
				r.Post("/confirm", controllers.FlowConfirm(deps.Flow, logg))
			})
		})

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutSummary(deps.Checkout, logg))
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
		})

		r.Route("/api/v1/profile", func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))
			r.Get("/", controllers.ProfileGet(deps.Profile, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Profile, logg))
			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(deps.Profile, logg))
				r.Post("/", controllers.AddressCreate(deps.Profile, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(deps.Profile, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(deps.Profile, logg))
				r.Post("/{addressId}/use", controllers.AddressUse(deps.Profile, logg))
			})
		})

		r.Get("/api/v1/products", controllers.ProductList(deps.Catalog, logg))
		r.Get("/api/v1/products/{productId}", controllers.ProductGet(deps.Catalog, logg))
		r.Get("/api/v1/categories", controllers.CategoryList(deps.Catalog, logg))

		r.Route("/api/v1/navigation", func(r chi.Router) {
			r.Get("/", controllers.NavigationHistory(deps.Navigation, logg))
			r.Post("/push", controllers.NavigationPush(deps.Navigation, logg))
			r.Post("/back", controllers.NavigationBack(deps.Navigation, logg))
			r.Delete("/", controllers.NavigationReset(deps.Navigation, logg))
		})
	})

	return r
}
