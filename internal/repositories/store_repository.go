package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tamaqBack/internal/models"
)

type StoreRepository struct {
	DB *sql.DB
}

const storeColumns = `id, owner_id, name, description, email, phone, city, address_text, lat, lon, image_url, is_open, created_at, updated_at`

func (r *StoreRepository) CreateStore(ctx context.Context, store models.Store) (models.Store, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO stores (owner_id, name, description, email, phone, city, address_text, lat, lon, image_url, is_open, created_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		store.OwnerID, store.Name, store.Description, store.Email, store.Phone, store.City, store.AddressText, store.Lat, store.Lon, store.ImageURL, store.IsOpen, time.Now())
	if err != nil {
		return models.Store{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Store{}, err
	}
	store.ID = id
	return store, nil
}

func (r *StoreRepository) GetStoreByID(ctx context.Context, id int64) (models.Store, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ?`, id)
	return scanStore(row)
}

func (r *StoreRepository) GetStoresByOwner(ctx context.Context, ownerID int64) ([]models.Store, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStores(rows)
}

func (r *StoreRepository) ListStoresByCity(ctx context.Context, city string, limit, offset int) ([]models.Store, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE city = ? AND is_open = 1 ORDER BY name LIMIT ? OFFSET ?`, city, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStores(rows)
}

// GetStoresByIDs loads stores preserving no particular order; callers
// sort by their own criteria (e.g. distance).
func (r *StoreRepository) GetStoresByIDs(ctx context.Context, ids []int64) ([]models.Store, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT `+storeColumns+` FROM stores WHERE id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStores(rows)
}

func (r *StoreRepository) UpdateStore(ctx context.Context, store models.Store) (models.Store, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE stores SET name = ?, description = ?, email = ?, phone = ?, city = ?, address_text = ?, lat = ?, lon = ?, image_url = ?, is_open = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		store.Name, store.Description, store.Email, store.Phone, store.City, store.AddressText, store.Lat, store.Lon, store.ImageURL, store.IsOpen, store.ID)
	if err != nil {
		return models.Store{}, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.Store{}, err
	}
	if rows == 0 {
		return models.Store{}, models.ErrStoreNotFound
	}
	return r.GetStoreByID(ctx, store.ID)
}

func scanStore(row *sql.Row) (models.Store, error) {
	var s models.Store
	var updatedAt sql.NullTime
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Email, &s.Phone, &s.City, &s.AddressText, &s.Lat, &s.Lon, &s.ImageURL, &s.IsOpen, &s.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Store{}, models.ErrStoreNotFound
	}
	if err != nil {
		return models.Store{}, err
	}
	if updatedAt.Valid {
		s.UpdatedAt = &updatedAt.Time
	}
	return s, nil
}

func scanStores(rows *sql.Rows) ([]models.Store, error) {
	var stores []models.Store
	for rows.Next() {
		var s models.Store
		var updatedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Email, &s.Phone, &s.City, &s.AddressText, &s.Lat, &s.Lon, &s.ImageURL, &s.IsOpen, &s.CreatedAt, &updatedAt); err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			s.UpdatedAt = &updatedAt.Time
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
