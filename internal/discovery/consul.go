package discovery

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// ConsulClient registers catalog instances and looks up healthy ones.
type ConsulClient struct {
	client *api.Client
	logger *slog.Logger
}

// ServiceConfig describes one instance. Address defaults to the host's
// outbound IP and HealthPath to /health.
type ServiceConfig struct {
	Name       string
	ID         string
	Address    string
	Port       int
	HealthPath string
	Tags       []string
	Meta       map[string]string
}

func NewConsulClient(addr string, logger *slog.Logger) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	if _, err := client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	logger.Info("connected to Consul", "addr", addr)
	return &ConsulClient{client: client, logger: logger}, nil
}

// outboundIP is the local address used to reach other hosts. No packet is
// sent; dialing UDP only selects a route.
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// Register adds the instance with an HTTP health check. Consul removes it
// on its own after 30s of failing checks.
func (c *ConsulClient) Register(cfg ServiceConfig) error {
	address := cfg.Address
	if address == "" {
		address = outboundIP()
	}
	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}
	hostPort := net.JoinHostPort(address, strconv.Itoa(cfg.Port))

	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: address,
		Tags:    cfg.Tags,
		Meta:    cfg.Meta,
		Check: &api.AgentServiceCheck{
			HTTP:                           "http://" + hostPort + healthPath,
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	c.logger.Info("registered service", "name", cfg.Name, "id", cfg.ID, "addr", hostPort)
	return nil
}

// Deregister removes a service from Consul
func (c *ConsulClient) Deregister(serviceID string) error {
	err := c.client.Agent().ServiceDeregister(serviceID)
	if err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	c.logger.Info("deregistered service", "id", serviceID)
	return nil
}

// GetServiceURLs returns the base URL of every healthy instance of a service
func (c *ConsulClient) GetServiceURLs(serviceName string) ([]string, error) {
	services, _, err := c.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no healthy instances of %s found", serviceName)
	}

	urls := make([]string, 0, len(services))
	for _, entry := range services {
		urls = append(urls, instanceURL(entry.Service))
	}
	return urls, nil
}

func instanceURL(svc *api.AgentService) string {
	address := svc.Address
	if address == "" {
		address = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(address, fmt.Sprint(svc.Port)))
}
