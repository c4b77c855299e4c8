// Package internalapi talks to the internal API service: signed URL
// issuance for object storage and push notification dispatch.
package internalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
)

// Client calls the internal API with a shared authorization token.
type Client struct {
	baseURL *url.URL
	token   string
	httpCli *http.Client
}

// NewClient creates a client. httpCli may be nil to use the default client.
func NewClient(baseURL string, token string, httpCli *http.Client) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if httpCli == nil {
		httpCli = http.DefaultClient
	}
	return &Client{baseURL: parsed, token: token, httpCli: httpCli}, nil
}

type signedURLsRequest struct {
	GsURLs []string `json:"gsUrls"`
}

type signedURLsResponse struct {
	URLs []string `json:"urls"`
}

// GetSignedURLs exchanges object locations for signed download URLs.
// The response list is parallel to the input.
func (c *Client) GetSignedURLs(ctx context.Context, gsURLs []string) ([]string, error) {
	var res signedURLsResponse
	if err := c.post(ctx, "service.InternalAPI/SignedGsUrls", signedURLsRequest{GsURLs: gsURLs}, &res); err != nil {
		return nil, err
	}
	return res.URLs, nil
}

type sendPushRequest struct {
	Text string `json:"text"`
}

// SendPush dispatches a push notification.
func (c *Client) SendPush(ctx context.Context, text string) error {
	return c.post(ctx, "service.InternalAPI/SendPush", sendPushRequest{Text: text}, &struct{}{})
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return apperrors.Wrap(err)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return apperrors.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	res, err := c.httpCli.Do(req)
	if err != nil {
		return apperrors.Wrap(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return apperrors.Internalf("internal api %s failed: status %d: %s", path, res.StatusCode, body)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && err != io.EOF {
		return apperrors.Wrap(err)
	}
	return nil
}
