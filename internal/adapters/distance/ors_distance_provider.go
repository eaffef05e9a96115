package distance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/platform/obs"
	"route66-trip-service/internal/ports"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultORSProfile = "driving-car"
)

// ORSOptions configures the OpenRouteService client. Zero fields take
// defaults.
type ORSOptions struct {
	APIKey         string
	BaseURL        string
	Profile        string
	HTTPTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// ORSDistanceProvider implements DistanceProvider using OpenRouteService.
//
// It coordinates:
//   - Label normalization
//   - Persistent geocode caching
//   - Persistent distance matrix caching
//   - External API calls with retry/backoff
//
// Returned distances are in miles and durations in hours. The provider is
// safe for concurrent use.
type ORSDistanceProvider struct {
	session        *http.Client
	apiKey         string
	baseURL        string
	profile        string
	maxAttempts    int
	initialBackoff time.Duration
	distanceCache  ports.DistanceCache
	geocodeCache   ports.GeocodeCache
	logger         *slog.Logger
}

var _ ports.DistanceMatrixProvider = (*ORSDistanceProvider)(nil)

// NewORSDistanceProvider builds a provider. Either cache may be nil.
func NewORSDistanceProvider(
	opts ORSOptions,
	distanceCache ports.DistanceCache,
	geocodeCache ports.GeocodeCache,
	logger *slog.Logger,
) (*ORSDistanceProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultORSBaseURL
	}
	if opts.Profile == "" {
		opts.Profile = DefaultORSProfile
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 4
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &ORSDistanceProvider{
		session:        &http.Client{Timeout: opts.HTTPTimeout},
		apiKey:         opts.APIKey,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		profile:        opts.Profile,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		distanceCache:  distanceCache,
		geocodeCache:   geocodeCache,
		logger:         logger,
	}, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delegate to batched path to reuse caching and matrix logic.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (ports.DistanceResult, error) {
	normOrigin := normalize(origin)
	normDestination := normalize(destination)
	if normOrigin == "" || normDestination == "" {
		return ports.DistanceResult{}, errors.New("get ORS distance: origin and destination must be non-empty")
	}
	if normOrigin == normDestination {
		return ports.DistanceResult{}, nil
	}

	results, err := o.GetDistances(ctx, normOrigin, []string{normDestination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get distances %q -> %q: %w", normOrigin, normDestination, err)
	}

	result, ok := results[normDestination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("no distance result for %q -> %q", origin, destination)
	}
	return result, nil
}

// Compute distances from a single origin to many destinations.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, o.logger, "ors.GetDistances")(&err)

	normOrigin := normalize(origin)
	if normOrigin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = normalize(d)
		if d == "" || d == normOrigin {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		destList = append(destList, d)
	}
	if len(destList) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	hits := map[string]ports.DistanceResult{}
	// Check persistent distance cache before issuing external API calls.
	if o.distanceCache != nil {
		hits, err = o.distanceCache.GetMany(ctx, normOrigin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	misses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}
	if len(misses) == 0 {
		return hits, nil
	}

	coords, err := o.resolveCoordinates(ctx, append([]string{normOrigin}, misses...))
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}

	destinationCoords := make([]domain.Coordinates, 0, len(misses))
	for _, d := range misses {
		destinationCoords = append(destinationCoords, coords[d])
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, coords[normOrigin], misses, destinationCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, normOrigin, fetched); err != nil {
			o.logger.WarnContext(ctx, "distance cache write failed", slog.Any("err", err))
		}
	}

	out := make(map[string]ports.DistanceResult, len(hits)+len(fetched))
	maps.Copy(out, hits)
	maps.Copy(out, fetched)
	return out, nil
}

// resolveCoordinates returns a coordinate for every label, consulting the
// geocode cache first. Every label must resolve or an error is returned.
func (o *ORSDistanceProvider) resolveCoordinates(ctx context.Context, labels []string) (map[string]domain.Coordinates, error) {
	coords := map[string]domain.Coordinates{}
	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, labels)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
		maps.Copy(coords, hits)
	}

	misses := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := coords[l]; !ok {
			misses = append(misses, l)
		}
	}

	if len(misses) > 0 {
		fresh, err := o.geocodeMany(ctx, misses)
		if err != nil {
			return nil, err
		}
		if o.geocodeCache != nil && len(fresh) > 0 {
			if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
				o.logger.WarnContext(ctx, "geocode cache write failed", slog.Any("err", err))
			}
		}
		maps.Copy(coords, fresh)
	}

	for _, l := range labels {
		if _, ok := coords[l]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", l)
		}
	}
	return coords, nil
}
