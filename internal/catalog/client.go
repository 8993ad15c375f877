// Package catalog talks to the remote supermarket REST API that owns
// products, categories and product pictures.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MaxPictureSize is the largest picture UploadPicture accepts.
const MaxPictureSize = 5 << 20

const headerIdempotencyKey = "X-Idempotency-Key"

type (
	tokenKey       struct{}
	idempotencyKey struct{}
)

// WithToken makes requests issued with ctx use token instead of the client's
// configured one. Handlers use it to pass the caller's bearer token through.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the token set by WithToken, if any.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok && t != ""
}

// WithIdempotencyKey makes writes issued with ctx reuse key instead of a
// fresh uuid, so a retried storefront request stays a retry upstream.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFrom(ctx context.Context) string {
	if k, ok := ctx.Value(idempotencyKey{}).(string); ok && k != "" {
		return k
	}
	return uuid.NewString()
}

// Client is a thin client over the catalog API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient builds a client for baseURL, e.g. "http://161.35.104.211:8000".
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the API root, also used to resolve picture paths.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/products/", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, "", &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories/", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	body, err := json.Marshal(in.payload())
	if err != nil {
		return Product{}, errors.Wrap(err, "catalog: encode product")
	}
	var out Product
	if err := c.do(ctx, http.MethodPost, "/products/", bytes.NewReader(body), "application/json", &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	body, err := json.Marshal(in.payload())
	if err != nil {
		return Product{}, errors.Wrap(err, "catalog: encode product")
	}
	var out Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, http.MethodPut, path, bytes.NewReader(body), "application/json", &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, "", nil)
}

// UploadPicture sends one image for product id and returns the stored path.
// Only image/* content up to MaxPictureSize is accepted.
func (c *Client) UploadPicture(ctx context.Context, id int64, filename, contentType string, data []byte) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}
	if len(data) > MaxPictureSize {
		return "", ErrPictureTooLarge
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", errors.Wrap(err, "catalog: build upload")
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Wrap(err, "catalog: build upload")
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrap(err, "catalog: build upload")
	}

	var raw json.RawMessage
	path := fmt.Sprintf("/products/%d/pictures", id)
	if err := c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), &raw); err != nil {
		return "", err
	}
	return picturePath(raw)
}

// picturePath accepts either a bare JSON string or an object carrying the
// path under one of the keys the API has used.
func picturePath(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	var obj struct {
		Path     string `json:"path"`
		URL      string `json:"url"`
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, p := range []string{obj.Path, obj.URL, obj.FilePath} {
			if p != "" {
				return p, nil
			}
		}
	}
	return "", ErrNoPicturePath
}

func (c *Client) DeletePicture(ctx context.Context, id int64, filePath string) error {
	body, err := json.Marshal(map[string]string{"file_path": filePath})
	if err != nil {
		return errors.Wrap(err, "catalog: encode picture path")
	}
	path := fmt.Sprintf("/products/%d/pictures", id)
	return c.do(ctx, http.MethodDelete, path, bytes.NewReader(body), "application/json", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "catalog: build %s %s", method, path)
	}

	token := c.token
	if t, ok := TokenFrom(ctx); ok {
		token = t
	}
	req.Header.Set("accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set(headerIdempotencyKey, idempotencyKeyFrom(ctx))
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "catalog: %s %s", method, path)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "catalog: read %s %s", method, path)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.WarnContext(ctx, "catalog request failed",
			"method", method, "path", path, "status", res.StatusCode)
		return &APIError{Method: method, Path: path, Status: res.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "catalog: decode %s %s", method, path)
	}
	return nil
}
