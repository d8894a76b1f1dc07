// Package handlers implements the sandbox REST API the console talks to.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"retailadmin/database"
	"retailadmin/logger"
	"retailadmin/metrics"
	"retailadmin/models"
)

// Options configures a Handler.
type Options struct {
	Store     database.Store
	JWTSecret []byte
	TokenTTL  time.Duration
	UploadDir string
	Metrics   *metrics.Metrics
}

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	store     database.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	uploadDir string
	metrics   *metrics.Metrics

	// registerMu makes the empty-store check and the insert of a registration one step.
	registerMu sync.Mutex
}

// New creates a Handler.
func New(opts Options) *Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 72 * time.Hour
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New("retailadmin")
	}
	return &Handler{
		store:     opts.Store,
		jwtSecret: opts.JWTSecret,
		tokenTTL:  opts.TokenTTL,
		uploadDir: opts.UploadDir,
		metrics:   opts.Metrics,
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}

func logFor(c *fiber.Ctx) *zap.Logger {
	return logger.FromContext(c.UserContext())
}

// storeFailure answers 404 for a missing record and 500 for anything else.
func storeFailure(c *fiber.Ctx, err error, notFound, failed string) error {
	if errors.Is(err, database.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, notFound)
	}
	logFor(c).Error(failed, zap.Error(err))
	return fail(c, fiber.StatusInternalServerError, failed)
}

// filterFrom reads page, limit and search, falling back to the defaults for missing or non-positive values.
func filterFrom(c *fiber.Ctx) models.Filter {
	f := models.DefaultFilter()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}
	f.Search = c.Query("search")
	return f
}

// decodeRecord parses a JSON object body keeping numbers exact.
func decodeRecord(c *fiber.Ctx) (models.Record, error) {
	rec := models.Record{}
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// public removes server-only fields before a record leaves the API.
func public(rec models.Record) models.Record {
	out := rec.Clone()
	delete(out, "passwordHash")
	delete(out, "password")
	return out
}
