package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/guitar-store/internal/logger"
)

func TestInstanceURL(t *testing.T) {
	assert.Equal(t, "http://10.0.0.5:3000", instanceURL(&api.AgentService{Address: "10.0.0.5", Port: 3000}))
	assert.Equal(t, "http://localhost:3001", instanceURL(&api.AgentService{Port: 3001}))
	assert.Equal(t, "http://[fd00::1]:3000", instanceURL(&api.AgentService{Address: "fd00::1", Port: 3000}))
}

// fakeAgent answers the handful of Consul HTTP endpoints the client uses.
func fakeAgent(t *testing.T) (*httptest.Server, *api.AgentServiceRegistration) {
	t.Helper()
	var registered api.AgentServiceRegistration
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/agent/self", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Config":{"NodeName":"test"}}`))
	})
	mux.HandleFunc("/v1/agent/service/register", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
	})
	mux.HandleFunc("/v1/health/service/catalog-service", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("passing"))
		_, _ = w.Write([]byte(`[
			{"Service":{"ID":"a","Service":"catalog-service","Address":"10.0.0.1","Port":3000}},
			{"Service":{"ID":"b","Service":"catalog-service","Address":"10.0.0.2","Port":3000}}
		]`))
	})
	mux.HandleFunc("/v1/health/service/missing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &registered
}

func TestConsulClient(t *testing.T) {
	srv, registered := fakeAgent(t)
	c, err := NewConsulClient(strings.TrimPrefix(srv.URL, "http://"), logger.Discard())
	require.NoError(t, err)

	require.NoError(t, c.Register(ServiceConfig{
		Name: "catalog-service", ID: "catalog-service-3000", Port: 3000,
		Meta: map[string]string{"origin": "node-a"},
	}))
	assert.Equal(t, "catalog-service-3000", registered.ID)
	assert.Equal(t, "node-a", registered.Meta["origin"])
	require.NotNil(t, registered.Check)
	assert.True(t, strings.HasSuffix(registered.Check.HTTP, ":3000/health"))

	urls, err := c.GetServiceURLs("catalog-service")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://10.0.0.1:3000", "http://10.0.0.2:3000"}, urls)

	_, err = c.GetServiceURLs("missing")
	assert.ErrorContains(t, err, "no healthy instances")
}

func TestRegisterAdvertisedAddress(t *testing.T) {
	srv, registered := fakeAgent(t)
	c, err := NewConsulClient(strings.TrimPrefix(srv.URL, "http://"), logger.Discard())
	require.NoError(t, err)

	require.NoError(t, c.Register(ServiceConfig{
		Name: "catalog-service", ID: "c1", Address: "catalog-1", Port: 3000, HealthPath: "/ready",
	}))
	assert.Equal(t, "catalog-1", registered.Address)
	assert.Equal(t, "http://catalog-1:3000/ready", registered.Check.HTTP)
}
