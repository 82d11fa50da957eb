package httpapi

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

// maxExportSize caps in-memory export downloads.
const maxExportSize = 64 << 20

func (c *Client) OrderStats(ctx context.Context, storeID, timeRange string) (*models.OrderStats, error) {
	q := url.Values{}
	if timeRange != "" {
		q.Set("timeRange", timeRange)
	}
	var st models.OrderStats
	if err := c.getJSON(ctx, pathf("/orders/stats/%s", storeID), q, &st); err != nil {
		return nil, err
	}
	if st.TimeRange == "" {
		st.TimeRange = timeRange
	}
	return &st, nil
}

func (c *Client) ExportOrders(ctx context.Context, storeID string, format models.ExportFormat, filters url.Values) (*backend.Export, error) {
	if !format.Valid() {
		return nil, errors.Wrapf(models.ErrValidation, "unsupported export format %q", format)
	}
	resp, err := c.send(ctx, http.MethodGet, pathf("/orders/export/%s/%s", string(format), storeID), filters, nil, "", "*/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read export")
	}
	if len(data) > maxExportSize {
		return nil, errors.Wrap(models.ErrBackend, "export too large")
	}

	out := &backend.Export{
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    exportFilename(resp.Header.Get("Content-Disposition"), storeID, format),
		Data:        data,
		FetchedAt:   time.Now().UTC(),
	}
	if out.ContentType == "" {
		out.ContentType = "application/octet-stream"
	}
	return out, nil
}

func exportFilename(disposition, storeID string, format models.ExportFormat) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	ext := "csv"
	if format == models.ExportFormatExcel {
		ext = "xlsx"
	}
	return "orders-" + storeID + "." + ext
}
