// Package ipfs uploads content to the content-addressable store.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
)

// Output is the store's response to an upload. Hash addresses the content.
type Output struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
}

// Client uploads bytes to an IPFS pinning endpoint with basic auth.
type Client struct {
	baseURL *url.URL
	key     string
	secret  string
	httpCli *http.Client
}

// NewClient creates a client. httpCli may be nil to use the default client.
func NewClient(baseURL string, key string, secret string, httpCli *http.Client) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if httpCli == nil {
		httpCli = http.DefaultClient
	}
	return &Client{baseURL: parsed, key: key, secret: secret, httpCli: httpCli}, nil
}

// Upload stores the bytes under the given filename and returns the content
// hash. Uploads are idempotent by hash; re-uploading identical content is
// harmless.
func (c *Client) Upload(ctx context.Context, data []byte, name string) (*Output, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, apperrors.Wrap(err)
	}
	if err := form.Close(); err != nil {
		return nil, apperrors.Wrap(err)
	}

	endpoint := *c.baseURL
	endpoint.Path = "/api/v0/add"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.SetBasicAuth(c.key, c.secret)

	res, err := c.httpCli.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		payload, _ := io.ReadAll(res.Body)
		return nil, apperrors.Internalf("ipfs upload failed: status %d: %s", res.StatusCode, payload)
	}

	var out Output
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("decode ipfs response: %w", err))
	}
	return &out, nil
}
