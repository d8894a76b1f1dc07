package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retailadmin/logger"
	"retailadmin/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID keeps the caller's request id or assigns a new one, and stores a request-scoped logger.
func RequestID(c *fiber.Ctx) error {
	requestID := c.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Set(RequestIDHeader, requestID)
	c.Locals("requestID", requestID)

	log := logger.Get().With(zap.String("request_id", requestID))
	c.SetUserContext(logger.WithContext(c.UserContext(), log))
	return c.Next()
}

// RequestLogger logs every request after it completes.
func RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	log := logger.FromContext(c.UserContext())
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		log.Warn("request failed", append(fields, zap.Error(err))...)
	} else {
		log.Info("request", fields...)
	}
	return err
}

// Metrics records request counts and durations labelled by route pattern.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(duration)
		return err
	}
}
