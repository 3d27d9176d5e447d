// Package robinhood implements the Robinhood brokerage adapter.
package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/username/tradedata/src/logger"
	"github.com/username/tradedata/src/models"
)

const (
	defaultBaseURL = "https://api.robinhood.com"

	// Public client id used by the official web app for the password grant.
	oauthClientID = "c82SH0WZOsabOXGP2sxqcj34FxkvfnWRZBKlBjFS"

	requestTimeout = 30 * time.Second

	// Robinhood throttles aggressively; stay well under its limits.
	requestsPerSecond = 2
	requestBurst      = 5

	symbolCacheTTL     = 12 * time.Hour
	symbolCacheCleanup = 1 * time.Hour
)

// API is the provider surface the adapter consumes. The production client
// implements it over HTTP; tests substitute a fake.
type API interface {
	Login(username, password string) error
	GetAllStockOrders() ([]models.RawRecord, error)
	GetAllOptionOrders() ([]models.RawRecord, error)
	GetOpenStockPositions() ([]models.RawRecord, error)
	GetOpenOptionPositions() ([]models.RawRecord, error)
	GetSymbolByURL(instrumentURL string) (string, error)
}

// Client talks to the Robinhood REST API. Not safe for concurrent use; the
// sync pipeline drives it from a single goroutine.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	token       *oauth2.Token
	symbolCache *cache.Cache
}

func NewClient() *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		symbolCache: cache.New(symbolCacheTTL, symbolCacheCleanup),
	}
}

// Login performs the resource-owner password grant and keeps the token for
// subsequent calls.
func (c *Client) Login(username, password string) error {
	conf := &oauth2.Config{
		ClientID: oauthClientID,
		Endpoint: oauth2.Endpoint{TokenURL: c.baseURL + "/oauth2/token/"},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	token, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return fmt.Errorf("robinhood login: %w", err)
	}
	c.token = token
	logger.L.Debug("robinhood login succeeded", "expires", c.tokenExpiry())
	return nil
}

// tokenExpiry reports when the session ends, preferring the token response
// and falling back to the unverified exp claim of the access token.
func (c *Client) tokenExpiry() time.Time {
	if c.token == nil {
		return time.Time{}
	}
	if !c.token.Expiry.IsZero() {
		return c.token.Expiry
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Time{}
}

func (c *Client) GetAllStockOrders() ([]models.RawRecord, error) {
	return c.getPaginated(c.baseURL + "/orders/")
}

func (c *Client) GetAllOptionOrders() ([]models.RawRecord, error) {
	return c.getPaginated(c.baseURL + "/options/orders/")
}

func (c *Client) GetOpenStockPositions() ([]models.RawRecord, error) {
	return c.getPaginated(c.baseURL + "/positions/?nonzero=true")
}

func (c *Client) GetOpenOptionPositions() ([]models.RawRecord, error) {
	return c.getPaginated(c.baseURL + "/options/positions/?nonzero=true")
}

// GetSymbolByURL resolves an instrument URL to its ticker symbol, caching
// results because positions frequently share instruments.
func (c *Client) GetSymbolByURL(instrumentURL string) (string, error) {
	if cached, ok := c.symbolCache.Get(instrumentURL); ok {
		return cached.(string), nil
	}

	var instrument struct {
		Symbol string `json:"symbol"`
	}
	if err := c.getJSON(instrumentURL, &instrument); err != nil {
		return "", fmt.Errorf("resolving instrument %s: %w", instrumentURL, err)
	}
	if instrument.Symbol != "" {
		c.symbolCache.Set(instrumentURL, instrument.Symbol, cache.DefaultExpiration)
	}
	return instrument.Symbol, nil
}

// getPaginated follows the results/next envelope until exhausted.
func (c *Client) getPaginated(url string) ([]models.RawRecord, error) {
	var records []models.RawRecord
	for url != "" {
		var page struct {
			Results []models.RawRecord `json:"results"`
			Next    string             `json:"next"`
		}
		if err := c.getJSON(url, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Results...)
		url = page.Next
	}
	return records, nil
}

func (c *Client) getJSON(url string, out any) error {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.token != nil {
		c.token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("robinhood returned 401 for %s, login required", url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("robinhood returned %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}
