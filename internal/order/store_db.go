package order

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

const orderColumns = `id, user_id, address, city, state, country, pin_code,
	subtotal, tax, shipping_charges, discount, total, status, created_at`

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, o.ID, o.UserID,
			o.ShippingInfo.Address, o.ShippingInfo.City, o.ShippingInfo.State,
			o.ShippingInfo.Country, o.ShippingInfo.PinCode,
			o.Subtotal, o.Tax, o.ShippingCharges, o.Discount, o.Total,
			o.Status, o.CreatedAt)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, photo, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range o.Items {
			if _, err := stmt.ExecContext(ctx, o.ID, it.ProductID, it.Name, it.Photo, it.Price, it.Quantity); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, bool, error) {
	var (
		o     Order
		found bool
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+orderColumns+`
			FROM orders
			WHERE id = $1
		`, id)

		if err := scanOrder(row, &o); err == sql.ErrNoRows {
			return nil
		} else if err != nil {
			return err
		}
		found = true

		items, err := s.loadItems(ctx, id)
		if err != nil {
			return err
		}
		o.Items = items
		return nil
	})

	if err != nil {
		return Order{}, false, err
	}
	return o, found, nil
}

func (s *PostgresStore) ByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (s *PostgresStore) All(ctx context.Context) ([]Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id, status string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			UPDATE orders SET status = $2 WHERE id = $1
		`, id, status)
		return err
	})
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
			return err
		}
		return tx.Commit()
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, o *Order) error {
	return row.Scan(&o.ID, &o.UserID,
		&o.ShippingInfo.Address, &o.ShippingInfo.City, &o.ShippingInfo.State,
		&o.ShippingInfo.Country, &o.ShippingInfo.PinCode,
		&o.Subtotal, &o.Tax, &o.ShippingCharges, &o.Discount, &o.Total,
		&o.Status, &o.CreatedAt)
}

func (s *PostgresStore) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	var out []Order

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Order, 0, 16)
		for rows.Next() {
			var o Order
			if err := scanOrder(rows, &o); err != nil {
				return err
			}
			out = append(out, o)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range out {
			items, err := s.loadItems(ctx, out[i].ID)
			if err != nil {
				return err
			}
			out[i].Items = items
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, photo, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0, 8)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Photo, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
