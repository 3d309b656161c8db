package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NearbyStore represents a store returned from Redis GEO queries.
type NearbyStore struct {
	ID    int64
	Miles float64
	Lon   float64
	Lat   float64
}

// StoreLocator indexes store coordinates in Redis GEO sets, one set per
// city, for nearby-store discovery.
type StoreLocator struct {
	rdb *redis.Client
}

// NewStoreLocator creates a new locator.
func NewStoreLocator(rdb *redis.Client) *StoreLocator {
	return &StoreLocator{rdb: rdb}
}

func storeKey(city string) string {
	return fmt.Sprintf("stores:%s", strings.ToLower(city))
}

func storeMember(storeID int64) string {
	return fmt.Sprintf("store:%d", storeID)
}

func parseStoreMember(member string) (int64, error) {
	parts := strings.Split(member, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid member %q", member)
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

// UpdateStore validates input and upserts a store position in the city's GEO set.
func (l *StoreLocator) UpdateStore(ctx context.Context, storeID int64, lon, lat float64, city string) error {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return fmt.Errorf("UpdateStore: empty city")
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("UpdateStore: invalid coords lon=%.8f lat=%.8f", lon, lat)
	}
	return l.rdb.GeoAdd(ctx, storeKey(city), &redis.GeoLocation{Name: storeMember(storeID), Longitude: lon, Latitude: lat}).Err()
}

// RemoveStore drops a store from the city's GEO set.
func (l *StoreLocator) RemoveStore(ctx context.Context, storeID int64, city string) error {
	return l.rdb.ZRem(ctx, storeKey(city), storeMember(storeID)).Err()
}

// Nearby returns stores within radiusMiles of the given point, closest first.
func (l *StoreLocator) Nearby(ctx context.Context, lon, lat, radiusMiles float64, limit int, city string) ([]NearbyStore, error) {
	res, err := l.rdb.GeoSearchLocation(ctx, storeKey(city), &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lon,
			Latitude:   lat,
			Radius:     radiusMiles,
			RadiusUnit: "mi",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}

	stores := make([]NearbyStore, 0, len(res))
	for _, loc := range res {
		id, err := parseStoreMember(loc.Name)
		if err != nil {
			continue
		}
		stores = append(stores, NearbyStore{ID: id, Miles: loc.Dist, Lon: loc.Longitude, Lat: loc.Latitude})
	}
	return stores, nil
}
