package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tamaqBack/internal/models"
	"tamaqBack/internal/services"
)

const maxImageSize = 10 << 20

type MenuHandler struct {
	Service *services.MenuService
}

func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	created, err := h.Service.CreateMenuItem(r.Context(), userIDFromContext(r), item)
	if err != nil {
		if errors.Is(err, models.ErrStoreNotFound) {
			http.Error(w, "Store not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to create item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *MenuHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	item, err := h.Service.GetMenuItem(r.Context(), id)
	if err != nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *MenuHandler) ListByStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := paramInt64(r, "store_id")
	if err != nil {
		http.Error(w, "Invalid store id", http.StatusBadRequest)
		return
	}
	items, err := h.Service.ListByStore(r.Context(), storeID)
	if err != nil {
		http.Error(w, "Failed to fetch menu", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(items)
}

func (h *MenuHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	item.ID = id
	updated, err := h.Service.UpdateMenuItem(r.Context(), userIDFromContext(r), item)
	if err != nil {
		if errors.Is(err, models.ErrMenuItemNotFound) || errors.Is(err, models.ErrStoreNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update item", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(updated)
}

func (h *MenuHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	storeID, err := paramInt64(r, "store_id")
	if err != nil {
		http.Error(w, "Invalid store id", http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteMenuItem(r.Context(), userIDFromContext(r), id, storeID); err != nil {
		if errors.Is(err, models.ErrMenuItemNotFound) || errors.Is(err, models.ErrStoreNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" file and attaches it to the item.
func (h *MenuHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	item, err := h.Service.UploadImage(r.Context(), userIDFromContext(r), id, data, header.Filename)
	if err != nil {
		if errors.Is(err, models.ErrMenuItemNotFound) || errors.Is(err, models.ErrStoreNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to upload image", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}
