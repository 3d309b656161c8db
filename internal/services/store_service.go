package services

import (
	"context"
	"fmt"
	"strings"

	"tamaqBack/internal/delivery/geo"
	"tamaqBack/internal/delivery/ws"
	"tamaqBack/internal/models"
	"tamaqBack/internal/repositories"
)

// Locator indexes store coordinates for nearby search.
type Locator interface {
	UpdateStore(ctx context.Context, storeID int64, lon, lat float64, city string) error
	RemoveStore(ctx context.Context, storeID int64, city string) error
	Nearby(ctx context.Context, lon, lat, radiusMiles float64, limit int, city string) ([]geo.NearbyStore, error)
}

// Announcer publishes store events to connected clients.
type Announcer interface {
	Broadcast(event string, payload interface{})
}

type StoreService struct {
	Stores   *repositories.StoreRepository
	Locator  Locator
	Announce Announcer
	Logger   Logger
}

const (
	defaultNearbyRadiusMiles = 10
	maxNearbyResults         = 50
)

// CreateStore registers a store, indexes its position and announces it
// to operators watching the live feed.
func (s *StoreService) CreateStore(ctx context.Context, store models.Store) (models.Store, error) {
	store.Name = strings.TrimSpace(store.Name)
	store.City = strings.TrimSpace(store.City)
	if store.Name == "" || store.City == "" {
		return models.Store{}, fmt.Errorf("create store: name and city required")
	}
	if store.Lat < -90 || store.Lat > 90 || store.Lon < -180 || store.Lon > 180 {
		return models.Store{}, fmt.Errorf("create store: invalid coords")
	}

	created, err := s.Stores.CreateStore(ctx, store)
	if err != nil {
		return models.Store{}, err
	}

	if err := s.Locator.UpdateStore(ctx, created.ID, created.Lon, created.Lat, created.City); err != nil {
		s.Logger.Errorf("index store %d: %v", created.ID, err)
	}
	if s.Announce != nil {
		s.Announce.Broadcast(ws.EventNewStoreRequest, created)
	}
	return created, nil
}

func (s *StoreService) UpdateStore(ctx context.Context, store models.Store) (models.Store, error) {
	current, err := s.Stores.GetStoreByID(ctx, store.ID)
	if err != nil {
		return models.Store{}, err
	}
	if current.OwnerID != store.OwnerID {
		return models.Store{}, models.ErrStoreNotFound
	}

	updated, err := s.Stores.UpdateStore(ctx, store)
	if err != nil {
		return models.Store{}, err
	}

	if current.City != updated.City {
		if err := s.Locator.RemoveStore(ctx, updated.ID, current.City); err != nil {
			s.Logger.Errorf("reindex store %d: %v", updated.ID, err)
		}
	}
	if err := s.Locator.UpdateStore(ctx, updated.ID, updated.Lon, updated.Lat, updated.City); err != nil {
		s.Logger.Errorf("index store %d: %v", updated.ID, err)
	}
	return updated, nil
}

func (s *StoreService) GetStore(ctx context.Context, id int64) (models.Store, error) {
	return s.Stores.GetStoreByID(ctx, id)
}

func (s *StoreService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Store, error) {
	return s.Stores.GetStoresByOwner(ctx, ownerID)
}

func (s *StoreService) ListByCity(ctx context.Context, city string, limit, offset int) ([]models.Store, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Stores.ListStoresByCity(ctx, city, limit, offset)
}

// Nearby resolves stores around a point via the GEO index and hydrates
// them from the database, preserving the closest-first ordering.
func (s *StoreService) Nearby(ctx context.Context, city string, lat, lon, radiusMiles float64, limit int) ([]models.NearbyStoreResult, error) {
	if radiusMiles <= 0 {
		radiusMiles = defaultNearbyRadiusMiles
	}
	if limit <= 0 || limit > maxNearbyResults {
		limit = maxNearbyResults
	}

	hits, err := s.Locator.Nearby(ctx, lon, lat, radiusMiles, limit, city)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(hits))
	miles := make(map[int64]float64, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
		miles[h.ID] = h.Miles
	}
	stores, err := s.Stores.GetStoresByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Store, len(stores))
	for _, st := range stores {
		byID[st.ID] = st
	}

	results := make([]models.NearbyStoreResult, 0, len(hits))
	for _, h := range hits {
		st, ok := byID[h.ID]
		if !ok || !st.IsOpen {
			continue
		}
		results = append(results, models.NearbyStoreResult{Store: st, DistanceMiles: h.Miles})
	}
	return results, nil
}
