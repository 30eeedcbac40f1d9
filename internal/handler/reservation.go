package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/internal/model/dto"
	"reservationapi/internal/service"
	"reservationapi/pkg/errors"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/response"
)

// Notifier 预约写入后的通知出口
type Notifier interface {
	SendNotification(ctx context.Context, r *model.Reservation, message string)
}

type ReservationHandler struct {
	reservations *service.ReservationService
	notifier     Notifier
}

func NewReservationHandler(reservations *service.ReservationService, notifier Notifier) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		notifier:     notifier,
	}
}

// ListReservations GET /reservations
func (h *ReservationHandler) ListReservations(ctx context.Context, c *app.RequestContext) {
	list, err := h.reservations.GetAllReservations(ctx)
	if err != nil {
		h.storageError(ctx, c, err)
		return
	}
	response.OK(ctx, c, list)
}

// GetReservation GET /reservations/:id
func (h *ReservationHandler) GetReservation(ctx context.Context, c *app.RequestContext) {
	id, ok := parseID(ctx, c)
	if !ok {
		return
	}

	reservation, found, err := h.reservations.GetReservationByID(ctx, id)
	if err != nil {
		h.storageError(ctx, c, err)
		return
	}
	if !found {
		response.Error(ctx, c, errors.ReservationNotFound)
		return
	}
	response.OK(ctx, c, reservation)
}

// CreateReservation POST /reservations
func (h *ReservationHandler) CreateReservation(ctx context.Context, c *app.RequestContext) {
	req, ok := bindReservation(ctx, c)
	if !ok {
		return
	}

	created, err := h.reservations.CreateReservation(ctx, req)
	if err != nil {
		h.storageError(ctx, c, err)
		return
	}

	entity := service.ConvertToEntity(*created)
	h.notify(ctx, entity, service.FormatNotificationMessage(entity))

	response.Created(ctx, c, created)
}

// UpdateReservation PUT /reservations/:id，整体替换
func (h *ReservationHandler) UpdateReservation(ctx context.Context, c *app.RequestContext) {
	id, ok := parseID(ctx, c)
	if !ok {
		return
	}
	req, ok := bindReservation(ctx, c)
	if !ok {
		return
	}

	updated, found, err := h.reservations.UpdateReservation(ctx, id, req)
	if err != nil {
		h.storageError(ctx, c, err)
		return
	}
	if !found {
		response.Error(ctx, c, errors.ReservationNotFound)
		return
	}

	entity := service.ConvertToEntity(*updated)
	h.notify(ctx, entity, service.UpdatedMessagePrefix+service.FormatNotificationMessage(entity))

	response.OK(ctx, c, updated)
}

// DeleteReservation DELETE /reservations/:id
func (h *ReservationHandler) DeleteReservation(ctx context.Context, c *app.RequestContext) {
	id, ok := parseID(ctx, c)
	if !ok {
		return
	}

	deleted, err := h.reservations.DeleteReservation(ctx, id)
	if err != nil {
		h.storageError(ctx, c, err)
		return
	}
	if !deleted {
		response.Error(ctx, c, errors.ReservationNotFound)
		return
	}
	response.NoContent(ctx, c)
}

// notify 通知失败或 panic 都不影响响应
func (h *ReservationHandler) notify(ctx context.Context, r *model.Reservation, message string) {
	if h.notifier == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.WithContext(ctx).Error("Notification panicked",
				zap.Int64("reservation_id", r.ID),
				zap.Any("panic", rec),
			)
		}
	}()

	h.notifier.SendNotification(ctx, r, message)
}

func (h *ReservationHandler) storageError(ctx context.Context, c *app.RequestContext, err error) {
	if response.StatusOf(err) >= 500 {
		logger.WithContext(ctx).Error("Reservation request failed",
			zap.String("method", string(c.Method())),
			zap.String("path", string(c.Path())),
			zap.Error(err),
		)
	}
	response.Error(ctx, c, err)
}

func parseID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithDetails(ctx, c, errors.InvalidPath, map[string]interface{}{"id": c.Param("id")})
		return 0, false
	}
	return id, true
}

func bindReservation(ctx context.Context, c *app.RequestContext) (dto.ReservationDto, bool) {
	var req dto.ReservationDto
	if len(c.Request.Body()) == 0 {
		response.ErrorWithDetails(ctx, c, errors.InvalidRequest, map[string]interface{}{"error": "request body is empty"})
		return req, false
	}
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return req, false
	}
	return req, true
}
