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

type MenuRepository struct {
	DB *sql.DB
}

func (r *MenuRepository) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.MenuItem{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, execErr := tx.ExecContext(ctx, `INSERT INTO menu_items (store_id, name, description, price, prep_minutes, image_url, available, created_at) VALUES (?,?,?,?,?,?,?,?)`,
		item.StoreID, item.Name, item.Description, item.Price, item.PrepMinutes, item.ImageURL, item.Available, time.Now())
	if execErr != nil {
		err = execErr
		return models.MenuItem{}, err
	}
	itemID, err := res.LastInsertId()
	if err != nil {
		return models.MenuItem{}, err
	}
	item.ID = itemID

	for i, opt := range item.Options {
		optRes, optErr := tx.ExecContext(ctx, `INSERT INTO menu_options (item_id, name) VALUES (?,?)`, itemID, opt.Name)
		if optErr != nil {
			err = optErr
			return models.MenuItem{}, err
		}
		optID, idErr := optRes.LastInsertId()
		if idErr != nil {
			err = idErr
			return models.MenuItem{}, err
		}
		item.Options[i].ID = optID
		item.Options[i].ItemID = itemID
		for j, choice := range opt.Choices {
			chRes, chErr := tx.ExecContext(ctx, `INSERT INTO option_choices (option_id, name, price_delta) VALUES (?,?,?)`, optID, choice.Name, choice.PriceDelta)
			if chErr != nil {
				err = chErr
				return models.MenuItem{}, err
			}
			chID, idErr := chRes.LastInsertId()
			if idErr != nil {
				err = idErr
				return models.MenuItem{}, err
			}
			item.Options[i].Choices[j].ID = chID
			item.Options[i].Choices[j].OptionID = optID
		}
	}

	if err = tx.Commit(); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (r *MenuRepository) GetMenuItemByID(ctx context.Context, id int64) (models.MenuItem, error) {
	var item models.MenuItem
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, `SELECT id, store_id, name, description, price, prep_minutes, image_url, available, created_at, updated_at FROM menu_items WHERE id = ?`, id).
		Scan(&item.ID, &item.StoreID, &item.Name, &item.Description, &item.Price, &item.PrepMinutes, &item.ImageURL, &item.Available, &item.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MenuItem{}, models.ErrMenuItemNotFound
	}
	if err != nil {
		return models.MenuItem{}, err
	}
	if updatedAt.Valid {
		item.UpdatedAt = &updatedAt.Time
	}

	options, err := r.fetchOptions(ctx, []int64{id})
	if err != nil {
		return models.MenuItem{}, err
	}
	item.Options = options[id]
	return item, nil
}

func (r *MenuRepository) GetMenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, store_id, name, description, price, prep_minutes, image_url, available, created_at, updated_at FROM menu_items WHERE id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanMenuItems(rows)
	if err != nil {
		return nil, err
	}

	options, err := r.fetchOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Options = options[items[i].ID]
	}
	return items, nil
}

func (r *MenuRepository) ListByStore(ctx context.Context, storeID int64) ([]models.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, store_id, name, description, price, prep_minutes, image_url, available, created_at, updated_at FROM menu_items WHERE store_id = ? ORDER BY name`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanMenuItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	options, err := r.fetchOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Options = options[items[i].ID]
	}
	return items, nil
}

func (r *MenuRepository) UpdateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE menu_items SET name = ?, description = ?, price = ?, prep_minutes = ?, image_url = ?, available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND store_id = ?`,
		item.Name, item.Description, item.Price, item.PrepMinutes, item.ImageURL, item.Available, item.ID, item.StoreID)
	if err != nil {
		return models.MenuItem{}, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.MenuItem{}, err
	}
	if rows == 0 {
		return models.MenuItem{}, models.ErrMenuItemNotFound
	}
	return r.GetMenuItemByID(ctx, item.ID)
}

func (r *MenuRepository) DeleteMenuItem(ctx context.Context, id, storeID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepository) fetchOptions(ctx context.Context, itemIDs []int64) (map[int64][]models.MenuOption, error) {
	placeholders := make([]string, len(itemIDs))
	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT o.id, o.item_id, o.name, c.id, c.name, c.price_delta FROM menu_options o LEFT JOIN option_choices c ON c.option_id = o.id WHERE o.item_id IN (%s) ORDER BY o.item_id, o.id, c.id`, strings.Join(placeholders, ","))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]models.MenuOption)
	index := make(map[int64]int)
	for rows.Next() {
		var opt models.MenuOption
		var choiceID sql.NullInt64
		var choiceName sql.NullString
		var priceDelta sql.NullFloat64
		if err := rows.Scan(&opt.ID, &opt.ItemID, &opt.Name, &choiceID, &choiceName, &priceDelta); err != nil {
			return nil, err
		}
		pos, seen := index[opt.ID]
		if !seen {
			result[opt.ItemID] = append(result[opt.ItemID], opt)
			pos = len(result[opt.ItemID]) - 1
			index[opt.ID] = pos
		}
		if choiceID.Valid {
			choice := models.OptionChoice{ID: choiceID.Int64, OptionID: opt.ID, Name: choiceName.String, PriceDelta: priceDelta.Float64}
			result[opt.ItemID][pos].Choices = append(result[opt.ItemID][pos].Choices, choice)
		}
	}
	return result, rows.Err()
}

func scanMenuItems(rows *sql.Rows) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		var updatedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.StoreID, &item.Name, &item.Description, &item.Price, &item.PrepMinutes, &item.ImageURL, &item.Available, &item.CreatedAt, &updatedAt); err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			item.UpdatedAt = &updatedAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
