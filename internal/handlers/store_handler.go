package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tamaqBack/internal/models"
	"tamaqBack/internal/services"
)

type StoreHandler struct {
	Service *services.StoreService
}

func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var store models.Store
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	store.OwnerID = userIDFromContext(r)
	created, err := h.Service.CreateStore(r.Context(), store)
	if err != nil {
		http.Error(w, "Failed to create store", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	store, err := h.Service.GetStore(r.Context(), id)
	if err != nil {
		http.Error(w, "Store not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(store)
}

func (h *StoreHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	var store models.Store
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	store.ID = id
	store.OwnerID = userIDFromContext(r)
	updated, err := h.Service.UpdateStore(r.Context(), store)
	if err != nil {
		if errors.Is(err, models.ErrStoreNotFound) {
			http.Error(w, "Store not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update store", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(updated)
}

func (h *StoreHandler) MyStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.Service.ListByOwner(r.Context(), userIDFromContext(r))
	if err != nil {
		http.Error(w, "Failed to fetch stores", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stores)
}

func (h *StoreHandler) ListByCity(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		http.Error(w, "Missing city", http.StatusBadRequest)
		return
	}
	stores, err := h.Service.ListByCity(r.Context(), city, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		http.Error(w, "Failed to fetch stores", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stores)
}

// Nearby lists open stores around a point, closest first.
func (h *StoreHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	lat, latErr := queryFloat(r, "lat")
	lon, lonErr := queryFloat(r, "lon")
	if city == "" || latErr != nil || lonErr != nil {
		http.Error(w, "Missing city, lat or lon", http.StatusBadRequest)
		return
	}
	radius, _ := queryFloat(r, "radius")
	results, err := h.Service.Nearby(r.Context(), city, lat, lon, radius, queryInt(r, "limit", 0))
	if err != nil {
		http.Error(w, "Failed to search stores", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.NearbyStoreResult{}
	}
	json.NewEncoder(w).Encode(results)
}
