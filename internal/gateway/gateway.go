// Package gateway is the reverse proxy in front of the catalog instances.
package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Resolver looks up the healthy instances of a service.
type Resolver interface {
	GetServiceURLs(serviceName string) ([]string, error)
}

type Gateway struct {
	resolver Resolver
	upstream string
	fallback string
	logger   *slog.Logger

	mutex   sync.RWMutex
	proxies []*httputil.ReverseProxy
	targets []string
	next    atomic.Uint64
}

// New builds a gateway and resolves the upstream once. resolver may be nil,
// in which case only the fallback URL is used.
func New(resolver Resolver, upstream, fallback string, logger *slog.Logger) *Gateway {
	g := &Gateway{
		resolver: resolver,
		upstream: upstream,
		fallback: fallback,
		logger:   logger,
	}
	g.Discover()
	return g
}

// Discover refreshes the instance list, falling back to the static URL when
// the registry has nothing.
func (g *Gateway) Discover() {
	var urls []string
	if g.resolver != nil {
		var err error
		urls, err = g.resolver.GetServiceURLs(g.upstream)
		if err != nil {
			g.logger.Warn("service not found, using fallback", "service", g.upstream, "error", err)
		}
	}
	if len(urls) == 0 && g.fallback != "" {
		urls = []string{g.fallback}
	}
	g.update(urls)
}

func (g *Gateway) update(urls []string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if slices.Equal(urls, g.targets) {
		return
	}

	proxies := make([]*httputil.ReverseProxy, 0, len(urls))
	targets := make([]string, 0, len(urls))
	for _, raw := range urls {
		target, err := url.Parse(raw)
		if err != nil {
			g.logger.Error("invalid upstream URL", "url", raw, "error", err)
			continue
		}
		proxies = append(proxies, g.newProxy(target))
		targets = append(targets, raw)
	}

	g.proxies = proxies
	g.targets = targets
	g.logger.Info("updated routes", "service", g.upstream, "targets", targets)
}

func (g *Gateway) newProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	// Push streams must reach the browser as soon as they are written.
	proxy.FlushInterval = -1
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		g.logger.Error("proxy error", "target", target.String(), "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error": "service unavailable"}`)
	}
	return proxy
}

// Watch rediscovers the upstream every interval until ctx is cancelled.
func (g *Gateway) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Discover()
		}
	}
}

// pick returns the next proxy in round-robin order.
func (g *Gateway) pick() *httputil.ReverseProxy {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if len(g.proxies) == 0 {
		return nil
	}
	n := g.next.Add(1) - 1
	return g.proxies[n%uint64(len(g.proxies))]
}

// Proxy forwards any request to one of the catalog instances.
func (g *Gateway) Proxy(c *gin.Context) {
	proxy := g.pick()
	if proxy == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": g.upstream + " unavailable"})
		return
	}
	g.logger.Debug("routing request", "method", c.Request.Method, "path", c.Request.URL.Path)
	proxy.ServeHTTP(c.Writer, c.Request)
}

func (g *Gateway) HealthCheck(c *gin.Context) {
	g.mutex.RLock()
	targets := slices.Clone(g.targets)
	g.mutex.RUnlock()

	statuses := make(map[string]string, len(targets))
	allHealthy := len(targets) > 0

	client := &http.Client{Timeout: 2 * time.Second}

	for _, target := range targets {
		resp, err := client.Get(target + "/health")
		if err != nil || resp.StatusCode != http.StatusOK {
			statuses[target] = "unhealthy"
			allHealthy = false
		} else {
			statuses[target] = "healthy"
		}
		if resp != nil {
			resp.Body.Close()
		}
	}

	status := "healthy"
	if !allHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"service":   "api-gateway",
		"instances": statuses,
	})
}

func (g *Gateway) ListServices(c *gin.Context) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	c.JSON(http.StatusOK, gin.H{"services": gin.H{g.upstream: g.targets}})
}

// Router mounts the gateway's own endpoints and proxies everything else.
func (g *Gateway) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", g.HealthCheck)
	router.GET("/services", g.ListServices)
	router.NoRoute(g.Proxy)
	return router
}
