package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const orderColumns = `id, COALESCE(customer_id, 0), status, total, created_at, updated_at`

func scanOrder(scan func(dest ...any) error) (domain.Order, error) {
	var (
		o       domain.Order
		created sql.NullTime
		updated sql.NullTime
	)
	if err := scan(&o.ID, &o.CustomerID, &o.Status, &o.Total.Decimal, &created, &updated); err != nil {
		return domain.Order{}, err
	}
	o.CreatedAt = nullTimestamp(created)
	o.UpdatedAt = nullTimestamp(updated)
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC NULLS LAST, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 256)
	index := map[int64]int{}
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := s.orderLines(ctx, nil)
	if err != nil {
		return nil, err
	}
	for orderID, orderLines := range lines {
		if idx, ok := index[orderID]; ok {
			orders[idx].Items = orderLines
		}
	}
	for i := range orders {
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderLine{}
		}
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	lines, err := s.orderLines(ctx, &id)
	if err != nil {
		return nil, err
	}
	o.Items = lines[id]
	if o.Items == nil {
		o.Items = []domain.OrderLine{}
	}

	if o.CustomerID > 0 {
		customer, err := s.GetCustomer(ctx, o.CustomerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		o.Customer = customer
	}
	return &o, nil
}

// orderLines loads lines for one order, or for every order when orderID is nil.
func (s *Store) orderLines(ctx context.Context, orderID *int64) (map[int64][]domain.OrderLine, error) {
	query := `
		SELECT oi.order_id, COALESCE(oi.item_id, 0), oi.qty, oi.price, oi.gst,
			COALESCE(i.name, ''), COALESCE(i.sku, '')
		FROM order_items oi
		LEFT JOIN items i ON i.id = oi.item_id
	`
	args := []any{}
	if orderID != nil {
		query += ` WHERE oi.order_id = $1`
		args = append(args, *orderID)
	}
	query += ` ORDER BY oi.order_id, oi.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := map[int64][]domain.OrderLine{}
	for rows.Next() {
		var (
			id   int64
			line domain.OrderLine
			gst  sql.NullInt64
		)
		if err := rows.Scan(&id, &line.ItemID, &line.Quantity, &line.Price.Decimal, &gst, &line.Name, &line.SKU); err != nil {
			return nil, err
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		line.GST = nullRate(gst)
		lines[id] = append(lines[id], line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

const customerColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(gstin, ''),
	COALESCE(company_name, ''), COALESCE(address, ''), created_at`

func scanCustomer(scan func(dest ...any) error) (domain.Customer, error) {
	var (
		c       domain.Customer
		created sql.NullTime
	)
	if err := scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.GSTIN, &c.CompanyName, &c.Address, &created); err != nil {
		return domain.Customer{}, err
	}
	c.CreatedAt = nullTimestamp(created)
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 128)
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1
	`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(sku, ''), COALESCE(category, ''), price, stock, reorder_point, gst_rate
		FROM items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0, 128)
	for rows.Next() {
		var (
			item domain.Item
			gst  sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.SKU, &item.Category, &item.Price.Decimal, &item.Stock, &item.ReorderPoint, &gst); err != nil {
			return nil, err
		}
		item.GSTRate = nullRate(gst)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetSettings returns the seller profile. A missing row yields empty settings
// rather than an error so receipts still render.
func (s *Store) GetSettings(ctx context.Context) (domain.StoreSettings, error) {
	var settings domain.StoreSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT company_name, address, phone, email, gstin, currency, show_tax
		FROM store_settings
		ORDER BY id ASC
		LIMIT 1
	`).Scan(&settings.CompanyName, &settings.Address, &settings.Phone, &settings.Email, &settings.GSTIN, &settings.Currency, &settings.ShowTax)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoreSettings{Currency: "INR", ShowTax: true}, nil
		}
		return domain.StoreSettings{}, fmt.Errorf("query store settings: %w", err)
	}
	return settings, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRequest
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRequest
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// nullTimestamp treats TIMESTAMP WITHOUT TIME ZONE values as UTC, matching the
// backend's naive-UTC convention.
func nullTimestamp(val sql.NullTime) domain.Timestamp {
	if !val.Valid {
		return domain.Timestamp{}
	}
	t := val.Time
	return domain.NewTimestamp(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC))
}

func nullRate(val sql.NullInt64) *int {
	if !val.Valid {
		return nil
	}
	r := int(val.Int64)
	return &r
}
