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

type OrderRepository struct {
	DB *sql.DB
}

const orderColumns = `o.id, o.public_id, o.user_id, o.store_id, s.name, o.total_amount, o.application_fee, o.status, o.address_text, o.address_lat, o.address_lon, o.accepted_at, o.min_time, o.max_time, o.created_at, o.updated_at`

// CreateOrder inserts a pending order with its line items and their
// selected option snapshots in one transaction, plus the first status
// history row.
func (r *OrderRepository) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if len(order.Items) == 0 {
		return models.Order{}, models.ErrEmptyOrder
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, execErr := tx.ExecContext(ctx, `INSERT INTO orders (public_id, user_id, store_id, total_amount, status, address_text, address_lat, address_lon, created_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		order.PublicID, order.UserID, order.StoreID, order.TotalAmount, order.Status, order.AddressText, order.AddressLat, order.AddressLon, time.Now())
	if execErr != nil {
		err = execErr
		return models.Order{}, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return models.Order{}, err
	}
	order.ID = orderID

	for i, item := range order.Items {
		itemRes, itemErr := tx.ExecContext(ctx, `INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, prep_minutes) VALUES (?,?,?,?,?,?)`,
			orderID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.PrepMinutes)
		if itemErr != nil {
			err = itemErr
			return models.Order{}, err
		}
		itemID, idErr := itemRes.LastInsertId()
		if idErr != nil {
			err = idErr
			return models.Order{}, err
		}
		order.Items[i].ID = itemID
		order.Items[i].OrderID = orderID
		for j, opt := range item.Options {
			optRes, optErr := tx.ExecContext(ctx, `INSERT INTO order_item_options (item_id, option_name, choice_name, price_delta) VALUES (?,?,?,?)`,
				itemID, opt.OptionName, opt.ChoiceName, opt.PriceDelta)
			if optErr != nil {
				err = optErr
				return models.Order{}, err
			}
			optID, idErr := optRes.LastInsertId()
			if idErr != nil {
				err = idErr
				return models.Order{}, err
			}
			order.Items[i].Options[j].ID = optID
			order.Items[i].Options[j].ItemID = itemID
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO order_status_history (order_id, status, created_at) VALUES (?,?,?)`, orderID, order.Status, time.Now()); err != nil {
		return models.Order{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int64) (models.Order, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o JOIN stores s ON s.id = o.store_id WHERE o.id = ?`, id)
	order, err := scanFullOrder(row)
	if err != nil {
		return models.Order{}, err
	}
	if err := r.attachItems(ctx, []*models.Order{&order}); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders o JOIN stores s ON s.id = o.store_id WHERE o.user_id = ? ORDER BY o.created_at DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

func (r *OrderRepository) ListByStore(ctx context.Context, storeID int64, limit, offset int) ([]models.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders o JOIN stores s ON s.id = o.store_id WHERE o.store_id = ? ORDER BY o.created_at DESC LIMIT ? OFFSET ?`, storeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

func (r *OrderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		order, err := scanFullOrderRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	index := make(map[int64]*models.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, fmt.Sprintf("%d", o.ID))
		index[o.ID] = o
	}

	query := fmt.Sprintf(`SELECT id, order_id, menu_item_id, name, quantity, unit_price, prep_minutes FROM order_items WHERE order_id IN (%s) ORDER BY order_id, id`, strings.Join(ids, ","))
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	itemIndex := make(map[int64]*models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.UnitPrice, &item.PrepMinutes); err != nil {
			return err
		}
		o := index[item.OrderID]
		o.Items = append(o.Items, item)
		itemIndex[item.ID] = &o.Items[len(o.Items)-1]
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(itemIndex) == 0 {
		return nil
	}

	itemIDs := make([]string, 0, len(itemIndex))
	for id := range itemIndex {
		itemIDs = append(itemIDs, fmt.Sprintf("%d", id))
	}
	optQuery := fmt.Sprintf(`SELECT id, item_id, option_name, choice_name, price_delta FROM order_item_options WHERE item_id IN (%s) ORDER BY item_id, id`, strings.Join(itemIDs, ","))
	optRows, err := r.DB.QueryContext(ctx, optQuery)
	if err != nil {
		return err
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt models.OrderItemOption
		if err := optRows.Scan(&opt.ID, &opt.ItemID, &opt.OptionName, &opt.ChoiceName, &opt.PriceDelta); err != nil {
			return err
		}
		if item, ok := itemIndex[opt.ItemID]; ok {
			item.Options = append(item.Options, opt)
		}
	}
	return optRows.Err()
}

type orderScanner interface {
	Scan(dest ...interface{}) error
}

func scanFullOrder(row *sql.Row) (models.Order, error) {
	order, err := scanOrderFields(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, models.ErrOrderNotFound
	}
	return order, err
}

func scanFullOrderRows(rows *sql.Rows) (models.Order, error) {
	return scanOrderFields(rows)
}

func scanOrderFields(s orderScanner) (models.Order, error) {
	var o models.Order
	var fee sql.NullFloat64
	var acceptedAt, minTime, maxTime, updatedAt sql.NullTime
	err := s.Scan(&o.ID, &o.PublicID, &o.UserID, &o.StoreID, &o.StoreName, &o.TotalAmount, &fee, &o.Status, &o.AddressText, &o.AddressLat, &o.AddressLon, &acceptedAt, &minTime, &maxTime, &o.CreatedAt, &updatedAt)
	if err != nil {
		return models.Order{}, err
	}
	if fee.Valid {
		o.ApplicationFee = &fee.Float64
	}
	if acceptedAt.Valid {
		o.AcceptedAt = &acceptedAt.Time
	}
	if minTime.Valid {
		o.MinTime = &minTime.Time
	}
	if maxTime.Valid {
		o.MaxTime = &maxTime.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = &updatedAt.Time
	}
	return o, nil
}
