package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name     string
	pinger   Pinger
	required bool
}

// DependencyStatus is one entry of the readiness report.
type DependencyStatus struct {
	Status    string `json:"status"`
	Required  bool   `json:"required"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is returned by both probes; Dependencies is set on readiness only.
type HealthResponse struct {
	Status       string                      `json:"status"`
	Service      string                      `json:"service"`
	Version      string                      `json:"version"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// HealthHandler serves liveness and readiness for the subscription API.
type HealthHandler struct {
	service      string
	version      string
	dependencies []dependency
}

// NewHealthHandler checks the user store (required) and the event relay (optional).
func NewHealthHandler(service, version string, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		dependencies: []dependency{
			{name: "postgres", pinger: postgres, required: true},
			{name: "redis", pinger: redis},
		},
	}
}

// Live reports that the process is serving.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "alive", Service: h.service, Version: h.version})
}

// Ready answers 503 when a required dependency is down.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:       "ready",
		Service:      h.service,
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus, len(h.dependencies)),
	}
	for _, dep := range h.dependencies {
		status := check(ctx, dep)
		if status.Status != "ok" && dep.required {
			resp.Status = "unavailable"
		}
		resp.Dependencies[dep.name] = status
	}

	if resp.Status != "ready" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func check(ctx context.Context, dep dependency) DependencyStatus {
	status := DependencyStatus{Status: "ok", Required: dep.required}
	if dep.pinger == nil {
		status.Status = "down"
		status.Error = "not configured"
		return status
	}
	start := time.Now()
	err := dep.pinger.Ping(ctx)
	status.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		status.Status = "down"
		status.Error = err.Error()
	}
	return status
}
