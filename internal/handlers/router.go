package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prudhivi99/guitar-store/internal/auth"
	"github.com/prudhivi99/guitar-store/internal/metrics"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

// Access is the authentication a route requires.
type Access int

const (
	Public Access = iota
	// Optional resolves the caller when a token is sent.
	Optional
	SignedIn
	Admin
)

func (a Access) String() string {
	switch a {
	case Optional:
		return "optional"
	case SignedIn:
		return "signed-in"
	case Admin:
		return "admin"
	}
	return "public"
}

// Route is one entry of the route table.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler gin.HandlerFunc
}

// Services groups the business services the handlers call.
type Services struct {
	Brands     service.BrandService
	Categories service.CategoryService
	Products   service.ProductService
	Orders     service.OrderService
	OrderItems service.OrderItemService
	Reviews    service.ReviewService
	Users      service.UserService
}

// Options tunes the router. Zero values are usable.
type Options struct {
	PublicBaseURL  string
	UploadMaxBytes int64
	CORSOrigins    []string
	Heartbeat      time.Duration
	// Uploader may be nil when object storage is not configured.
	Uploader   Uploader
	GraphQL    http.Handler
	Playground http.Handler
	Metrics    *metrics.Metrics
	// Ready reports whether the service can take traffic.
	Ready func(ctx context.Context) error
	// ElectricCategory and AcousticCategory back the /products/electric and
	// /products/acoustic shelves. Zero means 1 and 2.
	ElectricCategory int
	AcousticCategory int
}

// Router owns the gin engine and the route table it was built from.
type Router struct {
	engine  *gin.Engine
	handler http.Handler
	routes  []Route
}

var registerTagNames sync.Once

// NewRouter builds the engine. verifier checks bearer tokens for every route
// that is not Public.
func NewRouter(svc Services, bus Subscriber, verifier auth.Verifier, opts Options, logger *slog.Logger) *Router {
	registerTagNames.Do(useJSONFieldNames)
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = 5 << 20
	}
	if opts.ElectricCategory <= 0 {
		opts.ElectricCategory = 1
	}
	if opts.AcousticCategory <= 0 {
		opts.AcousticCategory = 2
	}

	engine := gin.New()
	engine.SetHTMLTemplate(Templates())
	engine.Use(
		RequestID(),
		Logging(logger, opts.Metrics),
		Conditional(opts.Metrics),
		Elapsed(),
		ErrorMapper(logger, true),
		Recovery(),
	)

	r := &Router{engine: engine}
	r.routes = routeTable(svc, bus, opts, logger)
	for _, rt := range r.routes {
		chain := []gin.HandlerFunc{}
		switch rt.Access {
		case Optional:
			chain = append(chain, auth.Optional(verifier))
		case SignedIn:
			chain = append(chain, auth.Require(verifier, ""))
		case Admin:
			chain = append(chain, auth.Require(verifier, models.RoleAdmin))
		}
		engine.Handle(rt.Method, rt.Path, append(chain, rt.Handler)...)
	}
	engine.StaticFS("/scripts", StaticFiles())
	engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(errNoRoute)
	})

	r.handler = cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match", requestIDHeader},
		ExposedHeaders:   []string{"ETag", "X-Elapsed-Time", "X-Server-Timing", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(engine)
	return r
}

// Handler is the CORS-wrapped engine.
func (r *Router) Handler() http.Handler { return r.handler }

// Engine exposes the bare gin engine.
func (r *Router) Engine() *gin.Engine { return r.engine }

// Routes returns the registered route table.
func (r *Router) Routes() []Route { return r.routes }

func routeTable(svc Services, bus Subscriber, opts Options, logger *slog.Logger) []Route {
	base := opts.PublicBaseURL
	brands := NewCRUDHandler(svc.Brands, base)
	categories := NewCRUDHandler(svc.Categories, base)
	products := NewCRUDHandler(svc.Products, base)
	orders := NewCRUDHandler(svc.Orders, base)
	items := NewCRUDHandler(svc.OrderItems, base)
	reviews := NewCRUDHandler(svc.Reviews, base)
	users := NewCRUDHandler(svc.Users, base)

	push := NewPushHandler(bus, opts.Heartbeat, opts.CORSOrigins, logger)
	pages := NewPageHandler(svc.Products, svc.Brands, svc.Categories, base)
	authH := NewAuthHandler(svc.Users, logger)

	var uploads gin.HandlerFunc = unavailable("object storage")
	var presign gin.HandlerFunc = unavailable("object storage")
	if opts.Uploader != nil {
		up := NewUploadHandler(opts.Uploader, opts.UploadMaxBytes)
		uploads, presign = up.Upload, up.Presign
	}

	routes := []Route{
		{http.MethodGet, "/health", Public, health(opts.Ready)},

		{http.MethodGet, "/", Public, pages.Index},
		{http.MethodGet, "/products", Public, pages.Products},
		{http.MethodGet, "/products/:id/details", Public, pages.ProductDetails},
		{http.MethodGet, "/products/electric", Public, pages.Shelf("Electric guitars", opts.ElectricCategory)},
		{http.MethodGet, "/products/acoustic", Public, pages.Shelf("Acoustic guitars", opts.AcousticCategory)},
		{http.MethodGet, "/brands", Public, pages.Brands},
		{http.MethodGet, "/categories", Public, pages.Categories},
		{http.MethodGet, "/auth/login", Public, pages.Login},
		{http.MethodGet, "/auth/register", Public, pages.Register},

		{http.MethodPost, "/auth/verify", SignedIn, authH.Verify},
		{http.MethodPost, "/auth/register", Public, authH.Register},

		{http.MethodPost, "/upload", Admin, uploads},
		{http.MethodGet, "/upload/:key", Public, presign},

		{http.MethodGet, "/events/updates", Public, push.Stream},
		{http.MethodGet, "/events/ws", Public, push.WebSocket},
	}

	for _, res := range []struct{ path, kind string }{
		{"brands", "brand"},
		{"categories", "category"},
		{"products", "product"},
		{"orders", "order"},
		{"order-items", "orderItem"},
		{"reviews", "review"},
		{"users", "user"},
	} {
		routes = append(routes, Route{http.MethodGet, "/" + res.path + "/updates", Public, push.StreamResource(res.kind)})
	}

	forms := adminPages(svc)
	reviewForms := NewAdminHandler(svc.Reviews, forms["reviews"])
	routes = append(routes, NewAdminHandler(svc.Brands, forms["brands"]).routes()...)
	routes = append(routes, NewAdminHandler(svc.Categories, forms["categories"]).routes()...)
	routes = append(routes, NewAdminHandler(svc.Products, forms["products"]).routes()...)
	routes = append(routes, Route{http.MethodGet, "/products/:id/reviews/add", Admin, reviewForms.ReviewForm(svc.Products)})
	routes = append(routes, NewAdminHandler(svc.Orders, forms["orders"]).routes()...)
	routes = append(routes, NewAdminHandler(svc.OrderItems, forms["order-items"]).routes()...)
	routes = append(routes, reviewForms.routes()...)
	routes = append(routes, NewAdminHandler(svc.Users, forms["users"]).routes()...)

	routes = append(routes, crudRoutes("brands", brands)...)
	routes = append(routes,
		Route{http.MethodPost, "/api/brands/add", Admin, brands.Create},
		Route{http.MethodGet, "/api/brands/:id/products", Admin, nested(func(c *gin.Context, id int) ([]models.Product, error) {
			return svc.Brands.Products(c.Request.Context(), id)
		})},
	)
	routes = append(routes, crudRoutes("categories", categories)...)
	routes = append(routes, Route{http.MethodGet, "/api/categories/:id/products", Admin, nested(func(c *gin.Context, id int) ([]models.Product, error) {
		return svc.Categories.Products(c.Request.Context(), id)
	})})
	routes = append(routes, crudRoutes("products", products)...)
	routes = append(routes, Route{http.MethodGet, "/api/products/:id/reviews", Admin, nested(func(c *gin.Context, id int) ([]models.Review, error) {
		return svc.Products.Reviews(c.Request.Context(), id)
	})})
	routes = append(routes, crudRoutes("orders", orders)...)
	routes = append(routes, Route{http.MethodGet, "/api/orders/:id/items", Admin, nested(func(c *gin.Context, id int) ([]models.OrderItem, error) {
		return svc.Orders.Items(c.Request.Context(), id)
	})})
	routes = append(routes, crudRoutes("order-items", items)...)
	routes = append(routes, crudRoutes("reviews", reviews)...)
	routes = append(routes, crudRoutes("users", users)...)
	routes = append(routes, Route{http.MethodGet, "/api/users/:id/orders", Admin, nested(func(c *gin.Context, id int) ([]models.Order, error) {
		return svc.Users.Orders(c.Request.Context(), id)
	})})

	if opts.GraphQL != nil {
		gql := gin.WrapH(opts.GraphQL)
		routes = append(routes,
			Route{http.MethodGet, "/graphql", Optional, gql},
			Route{http.MethodPost, "/graphql", Optional, gql},
		)
	}
	if opts.Playground != nil {
		routes = append(routes, Route{http.MethodGet, "/playground", Public, gin.WrapH(opts.Playground)})
	}
	if opts.Metrics != nil {
		routes = append(routes, Route{http.MethodGet, "/metrics", Public, gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{}))})
	}
	return routes
}

// crudRoutes lists the admin REST routes of one resource under /api/<path>.
func crudRoutes[T, C, U any](path string, h *CRUDHandler[T, C, U]) []Route {
	prefix := "/api/" + path
	return []Route{
		{http.MethodGet, prefix + "/list", Admin, h.List},
		{http.MethodGet, prefix + "/:id", Admin, h.Get},
		{http.MethodPost, prefix, Admin, h.Create},
		{http.MethodPatch, prefix + "/:id", Admin, h.Update},
		{http.MethodDelete, prefix + "/:id", Admin, h.Delete},
	}
}

func health(ready func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": "catalog-service", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "catalog-service"})
	}
}

func unavailable(what string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(&service.UpstreamError{Service: what, Err: errors.New("not configured")})
	}
}

// useJSONFieldNames makes binding errors name fields as clients send them.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}
