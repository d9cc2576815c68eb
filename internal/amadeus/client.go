// Package amadeus is a small client for the flight-offers vendor API:
// offer search, offer pricing and the location reference data.
package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath     = "/v1/security/oauth2/token"
	offersPath    = "/v2/shopping/flight-offers"
	pricingPath   = "/v1/shopping/flight-offers/pricing"
	locationsPath = "/v1/reference-data/locations"

	maxOffers = 10
	dateFmt   = "2006-01-02"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a client whose transport fetches and refreshes the
// client-credentials token on its own.
func NewClient(cfg config.AmadeusConfig, logger *zap.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// the token fetch uses the same timeout as API calls
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout()})
	httpClient := creds.Client(ctx)
	httpClient.Timeout = cfg.Timeout()

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: base, httpClient: httpClient, logger: logger}
}

type offersResponse struct {
	Data []domain.FlightOffer `json:"data"`
}

// Search returns at most ten offers for the criteria. Origin and destination
// must already be IATA codes.
func (c *Client) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.FlightOffer, error) {
	class := criteria.TravelClass
	if class == "" {
		class = domain.TravelClassEconomy
	}
	q := url.Values{}
	q.Set("originLocationCode", criteria.Origin)
	q.Set("destinationLocationCode", criteria.Destination)
	q.Set("departureDate", criteria.DepartureDate.Format(dateFmt))
	q.Set("adults", strconv.Itoa(criteria.Passengers))
	q.Set("travelClass", string(class))
	q.Set("max", strconv.Itoa(maxOffers))
	if criteria.ReturnDate != nil {
		q.Set("returnDate", criteria.ReturnDate.Format(dateFmt))
	}

	var resp offersResponse
	if err := c.do(ctx, http.MethodGet, offersPath+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	if resp.Data == nil {
		return []domain.FlightOffer{}, nil
	}
	return resp.Data, nil
}

type pricingRequest struct {
	Data pricingData `json:"data"`
}

type pricingData struct {
	Type         string           `json:"type"`
	FlightOffers []pricingOfferID `json:"flightOffers"`
}

type pricingOfferID struct {
	ID string `json:"id"`
}

// Details asks the vendor to price a single offer and returns the raw pricing
// document.
func (c *Client) Details(ctx context.Context, offerID string) (json.RawMessage, error) {
	body := pricingRequest{Data: pricingData{
		Type:         "flight-offers-pricing",
		FlightOffers: []pricingOfferID{{ID: offerID}},
	}}

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, pricingPath, body, &resp); err != nil {
		return nil, fmt.Errorf("flight details: %w", err)
	}
	return resp.Data, nil
}

type locationsResponse struct {
	Data []domain.Location `json:"data"`
}

func (c *Client) Lookup(ctx context.Context, keyword string) ([]domain.Location, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("subType", "AIRPORT,CITY")

	var resp locationsResponse
	if err := c.do(ctx, http.MethodGet, locationsPath+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("lookup location: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("amadeus request", zap.String("method", method), zap.String("path", path))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("amadeus request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return fmt.Errorf("request failed: %s %s - %s", method, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}
