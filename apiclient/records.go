package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"retailadmin/models"
)

// List fetches one page of a collection. The returned page never holds more than f.Limit items and its
// TotalCount is never below the number of items.
func (c *Client) List(ctx context.Context, path string, f models.Filter) (*models.Page, error) {
	var resp models.ListResponse
	if err := c.Get(ctx, path, f.Query(), &resp); err != nil {
		return nil, err
	}
	page := resp.ToPage()
	if f.Limit > 0 && len(page.Items) > f.Limit {
		c.log.Warn("API returned more items than requested",
			zap.String("path", path),
			zap.Int("limit", f.Limit),
			zap.Int("returned", len(page.Items)),
		)
		page.Items = page.Items[:f.Limit]
	}
	return page, nil
}

// Fetch loads a single record.
func (c *Client) Fetch(ctx context.Context, path string) (models.Record, error) {
	var rec models.Record
	if err := c.Get(ctx, path, nil, &rec); err != nil {
		return nil, err
	}
	return unwrap(rec), nil
}

// Create posts a new record and returns what the API stored.
func (c *Client) Create(ctx context.Context, path string, rec models.Record) (models.Record, error) {
	var out models.Record
	if err := c.Post(ctx, path, rec, &out); err != nil {
		return nil, err
	}
	return unwrap(out), nil
}

// Update replaces a record with the full field set in rec.
func (c *Client) Update(ctx context.Context, path string, rec models.Record) (models.Record, error) {
	var out models.Record
	if err := c.Put(ctx, path, rec, &out); err != nil {
		return nil, err
	}
	return unwrap(out), nil
}

// Remove deletes a record.
func (c *Client) Remove(ctx context.Context, path string) error {
	return c.Delete(ctx, path, nil)
}

// Upload sends a file as multipart field "file" and returns the URL the API stored it under.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	var resp models.UploadResponse
	if err := c.send(ctx, http.MethodPost, c.uploadPath, nil, &buf, mw.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", &HTTPError{Status: http.StatusOK, Message: "upload response carried no url"}
	}
	return resp.URL, nil
}

// Stats fetches per-resource record counts for the dashboard.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	var resp models.StatsResponse
	if err := c.Get(ctx, "/dashboard/stats", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Counts == nil {
		resp.Counts = map[string]int{}
	}
	return resp.Counts, nil
}

// unwrap accepts both a bare record and a {"data": record} envelope.
func unwrap(rec models.Record) models.Record {
	if rec == nil {
		return models.Record{}
	}
	if _, hasID := rec["id"]; hasID {
		return rec
	}
	if inner, ok := rec["data"].(map[string]interface{}); ok {
		return models.Record(inner)
	}
	return rec
}
