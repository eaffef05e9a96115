package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocodeMany resolves labels one at a time using /geocode/search.
// Duplicate labels are looked up once.
func (o *ORSDistanceProvider) geocodeMany(
	ctx context.Context,
	labels []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, o.logger, "ors.geocodeMany")(&err)

	out := make(map[string]domain.Coordinates, len(labels))
	for _, l := range labels {
		norm := normalize(l)
		if _, ok := out[norm]; ok || norm == "" {
			continue
		}

		c, err := o.geocodeOne(ctx, norm)
		if err != nil {
			return nil, err
		}
		out[norm] = c
	}

	return out, nil
}

func (o *ORSDistanceProvider) geocodeOne(ctx context.Context, label string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", label)
		q.Set("boundary.country", "US")
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", label, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", label)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", label)
	}

	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geocode returned out-of-range coordinates for %q", label)
	}
	return c, nil
}
