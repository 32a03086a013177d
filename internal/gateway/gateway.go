// Package gateway is the REST client for the products resource.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/iyhunko/catalogo-prodotti/internal/metrics"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client issues list/create/update/delete requests against <baseURL>/<resource>.
// It sets no timeout and never retries.
type Client struct {
	rest     *resty.Client
	resource string
}

// New creates a Client for the resource under baseURL.
func New(baseURL, resource string) *Client {
	return NewWithHTTPClient(baseURL, resource, &http.Client{})
}

// NewWithHTTPClient creates a Client that sends requests through hc.
func NewWithHTTPClient(baseURL, resource string, hc *http.Client) *Client {
	rest := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	return &Client{
		rest:     rest,
		resource: "/" + resource,
	}
}

// List fetches every product.
func (c *Client) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&products).
		Get(c.resource)
	if err = c.check(http.MethodGet, c.resource, resp, err); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Create posts a new product and returns the record stored by the backend.
func (c *Client) Create(ctx context.Context, product model.NewProduct) (model.Product, error) {
	var created model.Product
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(product).
		SetResult(&created).
		Post(c.resource)
	if err = c.check(http.MethodPost, c.resource, resp, err); err != nil {
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update sends a partial update for the product with the given id.
func (c *Client) Update(ctx context.Context, id int64, patch model.ProductPatch) error {
	path := c.itemPath(id)
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(patch).
		Patch(path)
	if err = c.check(http.MethodPatch, path, resp, err); err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return nil
}

// Delete removes the product with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	path := c.itemPath(id)
	resp, err := c.rest.R().
		SetContext(ctx).
		Delete(path)
	if err = c.check(http.MethodDelete, path, resp, err); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

func (c *Client) itemPath(id int64) string {
	return c.resource + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) check(method, path string, resp *resty.Response, err error) error {
	if err == nil && !resp.IsSuccess() {
		err = &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}
	metrics.ObserveGatewayRequest(method, err)
	if err != nil {
		return err
	}
	slog.Debug("gateway request done",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode()),
	)
	return nil
}
