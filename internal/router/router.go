package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"

	"reservationapi/internal/handler"
	"reservationapi/internal/middleware"
)

// Dependencies 路由需要的 handler 和可选中间件
type Dependencies struct {
	Reservations *handler.ReservationHandler
	Health       *handler.HealthHandler
	// Tracing 为 nil 时不挂 OpenTelemetry 追踪中间件
	Tracing app.HandlerFunc
	// RateLimit 为 nil 时不限流
	RateLimit app.HandlerFunc
}

func Register(h *server.Hertz, deps Dependencies) {
	h.Use(middleware.RecoverMiddleware())
	if deps.Tracing != nil {
		h.Use(deps.Tracing)
	}
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.MetricsMiddleware())

	h.GET("/actuator/health", deps.Health.Health)
	h.GET("/healthz", deps.Health.Liveness)

	// /api/reservations 是旧路径，与 /reservations 行为一致
	for _, prefix := range []string{"/reservations", "/api/reservations"} {
		group := h.Group(prefix)
		if deps.RateLimit != nil {
			group.Use(deps.RateLimit)
		}
		registerReservations(group, deps.Reservations)
	}
}

func registerReservations(g *route.RouterGroup, rh *handler.ReservationHandler) {
	g.GET("", rh.ListReservations)
	g.POST("", rh.CreateReservation)
	g.GET("/:id", rh.GetReservation)
	g.PUT("/:id", rh.UpdateReservation)
	g.DELETE("/:id", rh.DeleteReservation)
}
