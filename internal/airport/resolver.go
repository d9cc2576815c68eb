// Package airport turns free-text places into IATA codes.
package airport

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/jszwec/csvutil"
	"go.uber.org/zap"
)

//go:embed airports.csv
var airportsCSV []byte

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type LocationLookup interface {
	Lookup(ctx context.Context, keyword string) ([]domain.Location, error)
}

type fallbackRow struct {
	City string `csv:"city"`
	Code string `csv:"code"`
}

type Resolver struct {
	lookup   LocationLookup
	fallback map[string]string
	logger   *zap.Logger
}

func NewResolver(lookup LocationLookup, logger *zap.Logger) (*Resolver, error) {
	fallback, err := parseFallback(airportsCSV)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lookup: lookup, fallback: fallback, logger: logger}, nil
}

// Resolve tries, in order: a literal three-letter code, the location lookup,
// then the built-in city table.
func (r *Resolver) Resolve(ctx context.Context, location string) (string, error) {
	location = strings.TrimSpace(location)
	if upper := strings.ToUpper(location); iataPattern.MatchString(upper) {
		return upper, nil
	}

	if r.lookup != nil {
		matches, err := r.lookup.Lookup(ctx, location)
		switch {
		case err != nil:
			r.logger.Warn("airport lookup failed", zap.String("location", location), zap.Error(err))
		case len(matches) > 0 && matches[0].IATACode != "":
			return matches[0].IATACode, nil
		}
	}

	if code, ok := r.fallback[strings.ToLower(location)]; ok {
		return code, nil
	}
	return "", &domain.AirportNotFoundError{Location: location}
}

func parseFallback(data []byte) (map[string]string, error) {
	dec, err := csvutil.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("airport table: %w", err)
	}
	var rows []fallbackRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("airport table: %w", err)
	}
	table := make(map[string]string, len(rows))
	for _, row := range rows {
		table[strings.ToLower(row.City)] = strings.ToUpper(row.Code)
	}
	return table, nil
}
