package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
)

// HealthCheck 单个依赖的探活函数
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// Liveness GET /healthz，只要进程在就返回 UP
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusOK, healthResponse{Status: "UP"})
}

// Health GET /actuator/health，附带依赖状态，整体状态保持 UP 以便作为存活探针
func (h *HealthHandler) Health(ctx context.Context, c *app.RequestContext) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "UP"}
	if len(h.checks) > 0 {
		resp.Components = make(map[string]componentStatus, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Components[name] = componentStatus{Status: "DOWN", Error: err.Error()}
				continue
			}
			resp.Components[name] = componentStatus{Status: "UP"}
		}
	}

	c.JSON(http.StatusOK, resp)
}
