package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/platform/obs"
	"route66-trip-service/internal/ports"
)

const (
	redisDistancePrefix = "route66:distance:"
	redisGeocodePrefix  = "route66:geocode:"
)

type redisDistance struct {
	Miles float64 `json:"miles"`
	Hours float64 `json:"hours"`
}

type redisCoordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// RedisDistanceCache stores provider distances in Redis with a TTL so a
// fleet of instances shares lookups. A zero TTL keeps entries forever.
type RedisDistanceCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.DistanceCache = (*RedisDistanceCache)(nil)

func NewRedisDistanceCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisDistanceCache {
	return &RedisDistanceCache{client: client, ttl: ttl, logger: orDiscard(logger)}
}

func distanceKey(origin, dest string) string {
	return redisDistancePrefix + origin + "|" + dest
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, c.logger, "distance.redis.GetMany")(&err)

	if c.client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	keys := make([]string, len(uniq))
	for i, d := range uniq {
		keys[i] = distanceKey(origin, d)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: redis mget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var d redisDistance
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			c.logger.WarnContext(ctx, "distance cache: dropping undecodable entry",
				slog.String("key", keys[i]), slog.Any("err", err))
			continue
		}
		out[uniq[i]] = ports.DistanceResult{DistanceMiles: d.Miles, DurationHours: d.Hours}
	}
	return out, nil
}

func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, c.logger, "distance.redis.PutMany")(&err)

	if c.client == nil {
		return errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		raw, err := json.Marshal(redisDistance{Miles: r.DistanceMiles, Hours: r.DurationHours})
		if err != nil {
			return fmt.Errorf("insert distance cache dest=%q: encode: %w", dest, err)
		}
		pipe.Set(ctx, distanceKey(origin, dest), raw, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: redis exec: %w", err)
	}
	return nil
}

// RedisGeocodeCache stores geocoded labels in Redis with a TTL.
type RedisGeocodeCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.GeocodeCache = (*RedisGeocodeCache)(nil)

func NewRedisGeocodeCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl, logger: orDiscard(logger)}
}

func (c *RedisGeocodeCache) GetMany(ctx context.Context, labels []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, c.logger, "geocode.redis.GetMany")(&err)

	if c.client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(labels)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, l := range uniq {
		keys[i] = redisGeocodePrefix + l
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rc redisCoordinates
		if err := json.Unmarshal([]byte(raw), &rc); err != nil {
			c.logger.WarnContext(ctx, "geocode cache: dropping undecodable entry",
				slog.String("key", keys[i]), slog.Any("err", err))
			continue
		}
		out[uniq[i]] = domain.Coordinates{Lon: rc.Lon, Lat: rc.Lat}
	}
	return out, nil
}

func (c *RedisGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, c.logger, "geocode.redis.PutMany")(&err)

	if c.client == nil {
		return errors.New("geocode cache: redis client is nil")
	}
	if len(coords) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for label, co := range coords {
		if strings.TrimSpace(label) == "" {
			return errors.New("insert geocode cache: empty label key")
		}
		raw, err := json.Marshal(redisCoordinates{Lon: co.Lon, Lat: co.Lat})
		if err != nil {
			return fmt.Errorf("insert geocode cache label=%q: encode: %w", label, err)
		}
		pipe.Set(ctx, redisGeocodePrefix+label, raw, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: redis exec: %w", err)
	}
	return nil
}
