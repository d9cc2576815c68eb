package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.FlightOffer, error)
	Details(ctx context.Context, offerID string) (json.RawMessage, error)
	AirportCode(ctx context.Context, location string) (string, error)
}

// Vendor is the upstream flight-offer API.
type Vendor interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.FlightOffer, error)
	Details(ctx context.Context, offerID string) (json.RawMessage, error)
}

type AirportResolver interface {
	Resolve(ctx context.Context, location string) (string, error)
}

var ErrInvalidCriteria = errors.New("invalid search criteria")

type FlightService struct {
	vendor   Vendor
	airports AirportResolver
	logger   *zap.Logger
}

func NewFlightService(vendor Vendor, airports AirportResolver, logger *zap.Logger) *FlightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightService{vendor: vendor, airports: airports, logger: logger}
}

// Search resolves both locations to IATA codes and queries the vendor.
// Resolution failures are returned unchanged so callers can tell them apart
// from an unavailable vendor.
func (s *FlightService) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.FlightOffer, error) {
	if err := validate(criteria); err != nil {
		return nil, err
	}

	origin, err := s.airports.Resolve(ctx, criteria.Origin)
	if err != nil {
		return nil, err
	}
	destination, err := s.airports.Resolve(ctx, criteria.Destination)
	if err != nil {
		return nil, err
	}

	resolved := criteria
	resolved.Origin = origin
	resolved.Destination = destination
	if resolved.TravelClass == "" {
		resolved.TravelClass = domain.TravelClassEconomy
	}

	offers, err := s.vendor.Search(ctx, resolved)
	if err != nil {
		s.logger.Error("flight search failed",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	s.logger.Info("flight search",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Int("offers", len(offers)),
	)
	return offers, nil
}

func (s *FlightService) Details(ctx context.Context, offerID string) (json.RawMessage, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, fmt.Errorf("%w: offer id is required", ErrInvalidCriteria)
	}
	details, err := s.vendor.Details(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	return details, nil
}

func (s *FlightService) AirportCode(ctx context.Context, location string) (string, error) {
	return s.airports.Resolve(ctx, location)
}

func validate(c domain.SearchCriteria) error {
	switch {
	case strings.TrimSpace(c.Origin) == "" || strings.TrimSpace(c.Destination) == "":
		return fmt.Errorf("%w: origin and destination are required", ErrInvalidCriteria)
	case c.DepartureDate.IsZero():
		return fmt.Errorf("%w: departure date is required", ErrInvalidCriteria)
	case c.ReturnDate != nil && c.ReturnDate.Before(c.DepartureDate):
		return fmt.Errorf("%w: return date is before departure", ErrInvalidCriteria)
	case c.Passengers < 1 || c.Passengers > 9:
		return fmt.Errorf("%w: passengers must be between 1 and 9", ErrInvalidCriteria)
	}
	switch c.TravelClass {
	case "", domain.TravelClassEconomy, domain.TravelClassPremiumEconomy, domain.TravelClassBusiness, domain.TravelClassFirst:
		return nil
	}
	return fmt.Errorf("%w: unknown travel class %q", ErrInvalidCriteria, c.TravelClass)
}

var _ FlightUseCase = (*FlightService)(nil)
