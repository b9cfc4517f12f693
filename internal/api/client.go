package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"articledash/internal/model"

	"github.com/goccy/go-json"
)

const articlesPath = "/api/articles"

// maxBody caps how much of a response we are willing to read.
const maxBody = 4 << 20

// ListQuery is the search and paging input of a list request.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

// Client talks to the Article API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the API rooted at baseURL
// (for example "https://api.example.com").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the underlying http.Client (tests, custom transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// BaseURL returns the root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches one page of articles. The result is always list-shaped.
func (c *Client) List(ctx context.Context, q ListQuery) (*Result, error) {
	v := url.Values{}
	v.Set("search", q.Search)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))

	res, err := c.do(ctx, http.MethodGet, articlesPath+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if res.Kind != KindList {
		return nil, fmt.Errorf("list articles: %w: got %s payload", ErrUnexpectedShape, res.Kind)
	}
	return res, nil
}

// Get fetches a single article. The result is always single-shaped.
func (c *Client) Get(ctx context.Context, id int) (*Result, error) {
	res, err := c.do(ctx, http.MethodGet, articlePath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	if res.Kind != KindSingle {
		return nil, fmt.Errorf("get article %d: %w: got %s payload", id, ErrUnexpectedShape, res.Kind)
	}
	return res, nil
}

// Create posts a new article.
func (c *Client) Create(ctx context.Context, in model.ArticleInput) (*Result, error) {
	res, err := c.do(ctx, http.MethodPost, articlesPath, in)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return res, nil
}

// Update replaces title and content of an existing article.
func (c *Client) Update(ctx context.Context, id int, in model.ArticleInput) (*Result, error) {
	res, err := c.do(ctx, http.MethodPut, articlePath(id), in)
	if err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	return res, nil
}

// Delete removes an article.
func (c *Client) Delete(ctx context.Context, id int) (*Result, error) {
	res, err := c.do(ctx, http.MethodDelete, articlePath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("delete article %d: %w", id, err)
	}
	return res, nil
}

func articlePath(id int) string {
	return articlesPath + "/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Result, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}

	res, err := decode(resp.StatusCode, raw)
	if err != nil {
		return nil, err
	}
	return res, nil
}
