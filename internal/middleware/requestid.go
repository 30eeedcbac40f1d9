package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"reservationapi/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware 透传或生成 X-Request-Id
func RequestIDMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		requestID := string(c.GetHeader(HeaderRequestID))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next(logger.ContextWithFields(ctx, zap.String("request_id", requestID)))
	}
}

// GetRequestID 返回当前请求的 id，中间件未挂载时为空
func GetRequestID(c *app.RequestContext) string {
	return c.GetString(requestIDKey)
}
