package data

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spot-optimizer/internal/model"
)

// Client fetches spot-market prices from the Netztransparenz API.
// Authentication is OAuth2 client credentials; the bearer token is cached on
// the client until shortly before expiry.
type Client struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string

	// TokenLifetime is used when the token endpoint does not report
	// expires_in.
	TokenLifetime time.Duration

	HTTP *http.Client

	tokens tokenCache
}

const (
	DefaultTokenURL = "https://identity.netztransparenz.de/users/connect/token"
	DefaultBaseURL  = "https://ds.netztransparenz.de/api/v1/data/Spotmarktpreise"

	// apiTimeLayout is the timestamp format the API expects in the path.
	apiTimeLayout = "2006-01-02T15:04:05"
)

// NewClient creates a Netztransparenz client. Empty tokenURL/baseURL fall
// back to the public endpoints.
func NewClient(clientID, clientSecret, tokenURL, baseURL string) *Client {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		TokenURL:      tokenURL,
		BaseURL:       baseURL,
		TokenLifetime: 3500 * time.Second,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error from the Netztransparenz API or its identity
// service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// FetchSpotPrices retrieves hourly spot prices for the date window. The
// window is widened to whole days (00:00:00 through 23:59:59) before being
// sent, matching how the feed is queried.
func (c *Client) FetchSpotPrices(start, end time.Time) ([]model.SpotPrice, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("start and end are required")
	}
	if start.After(end) {
		return nil, fmt.Errorf("start must not be after end")
	}

	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}

	startStr := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()).Format(apiTimeLayout)
	endStr := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location()).Format(apiTimeLayout)
	reqURL := fmt.Sprintf("%s/%s/%s", c.BaseURL, url.PathEscape(startStr), url.PathEscape(endStr))

	log.Printf("[Netztransparenz] Request: GET %s", reqURL)

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "*/*")

	began := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("[Netztransparenz] Request failed: %v (duration: %v)", err, time.Since(began))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[Netztransparenz] Response: %d %s (duration: %v)", resp.StatusCode, resp.Status, time.Since(began))

	switch resp.StatusCode {
	case http.StatusOK:
		// Success, continue.
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       "AUTH_ERROR",
			Message:    fmt.Sprintf("authentication rejected by API (status %d)", resp.StatusCode),
		}
	case http.StatusTooManyRequests:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    "rate limit exceeded. Retry after: " + resp.Header.Get("Retry-After"),
		}
	default:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	records, diags, err := ParseSpotPrices(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(diags) > 0 {
		log.Printf("[Netztransparenz] Skipped %d malformed rows", len(diags))
	}
	log.Printf("[Netztransparenz] Success: received %d records", len(records))
	return records, nil
}

// bearerToken returns a cached token or requests a fresh one.
func (c *Client) bearerToken() (string, error) {
	if tok, ok := c.tokens.get(time.Now()); ok {
		return tok, nil
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return "", &APIError{
			Code:    "MISSING_CREDENTIALS",
			Message: "client_id and client_secret are required",
		}
	}

	log.Printf("[Netztransparenz] Requesting new bearer token")

	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("grant_type", "client_credentials")

	resp, err := c.HTTP.Post(c.TokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Code:       "TOKEN_ERROR",
			Message:    fmt.Sprintf("token endpoint returned status %d", resp.StatusCode),
		}
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", &APIError{
			Code:    "TOKEN_ERROR",
			Message: "token response did not contain access_token",
		}
	}

	lifetime := c.TokenLifetime
	if body.ExpiresIn > 0 {
		lifetime = time.Duration(body.ExpiresIn) * time.Second
	}
	c.tokens.set(body.AccessToken, lifetime, time.Now())

	log.Printf("[Netztransparenz] Received token, valid for %v", lifetime)
	return body.AccessToken, nil
}
