// Package steamweb looks up current display names through the public Steam
// Web API. The lookup is strictly cosmetic; callers run it under its own
// deadline and drop the result on any failure.
package steamweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

const (
	defaultBaseURL   = "https://api.steampowered.com"
	summariesPath    = "/ISteamUser/GetPlayerSummaries/v2/"
	maxResponseBytes = 1 << 20
	// The API caps GetPlayerSummaries at 100 ids per call.
	maxIDsPerRequest = 100
)

type Client struct {
	BaseURL        string
	Key            string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.PersonaDirectory = (*Client)(nil)

type summariesEnvelope struct {
	Response summariesResponse `json:"response"`
}

type summariesResponse struct {
	Players []playerSummary `json:"players"`
}

type playerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
}

// PersonaNames resolves the current display name for each id. Ids the API
// does not return, private profiles included, are simply absent from the
// result.
func (c *Client) PersonaNames(ctx context.Context, ids []domain.SteamID) (map[domain.SteamID]string, error) {
	if c.Key == "" {
		return nil, errors.New("steam web api key is required")
	}

	names := make(map[domain.SteamID]string, len(ids))
	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		if err := c.fetchChunk(ctx, ids[start:end], names); err != nil {
			return nil, err
		}
	}

	return names, nil
}

func (c *Client) fetchChunk(ctx context.Context, ids []domain.SteamID, names map[domain.SteamID]string) error {
	endpoint, err := c.buildURL(ids)
	if err != nil {
		return err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create persona request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("request persona names: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("request persona names: status %d", resp.StatusCode)
	}

	var payload summariesEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return fmt.Errorf("decode persona response: %w", err)
	}

	for _, player := range payload.Response.Players {
		if player.SteamID == "" || player.PersonaName == "" {
			continue
		}
		names[domain.SteamID(player.SteamID)] = player.PersonaName
	}

	return nil
}

func (c *Client) buildURL(ids []domain.SteamID) (string, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}

	endpoint, err := parsed.Parse(summariesPath)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}

	values := url.Values{}
	values.Set("key", c.Key)
	values.Set("steamids", strings.Join(raw, ","))
	endpoint.RawQuery = values.Encode()

	return endpoint.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}
