package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	orders          []domain.Order
	ordersByID      map[int64]int
	customers       []domain.Customer
	customersByID   map[int64]int
	items           []domain.Item
	settings        domain.StoreSettings
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_VIEWER_PASSWORD; if
// unset, dev defaults are used with a warning. Deployments backed by
// PostgreSQL read users from app_users instead.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	viewerPwd := envOr("SEED_VIEWER_PASSWORD", "viewer123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_VIEWER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_VIEWER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"viewer", viewerPwd, domain.RoleUser},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New serves the given snapshot and the seed user accounts.
func New(snapshot domain.Snapshot) *Store {
	s := &Store{usersByUsername: seedUsers()}
	s.ReplaceSnapshot(snapshot)
	return s
}

// NewWithoutUsers serves the snapshot with no user accounts, for callers that
// never authenticate.
func NewWithoutUsers(snapshot domain.Snapshot) *Store {
	s := &Store{usersByUsername: map[string]domain.UserAccount{}}
	s.ReplaceSnapshot(snapshot)
	return s
}

// NewSeeded serves a demo snapshot anchored at the current time.
func NewSeeded() *Store {
	return New(DemoSnapshot(time.Now().UTC()))
}

// LoadFile reads a JSON snapshot exported from the backend.
func LoadFile(path string) (*Store, error) {
	snapshot, err := ReadSnapshotFile(path)
	if err != nil {
		return nil, err
	}
	return New(snapshot), nil
}

func ReadSnapshotFile(path string) (domain.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

// ReplaceSnapshot swaps the served data atomically.
func (s *Store) ReplaceSnapshot(snapshot domain.Snapshot) {
	orders := make([]domain.Order, 0, len(snapshot.Orders))
	ordersByID := make(map[int64]int, len(snapshot.Orders))
	for _, o := range snapshot.Orders {
		ordersByID[o.ID] = len(orders)
		orders = append(orders, cloneOrder(o))
	}
	customers := slices.Clone(snapshot.Customers)
	customersByID := make(map[int64]int, len(customers))
	for i, c := range customers {
		customersByID[c.ID] = i
	}
	items := make([]domain.Item, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, cloneItem(item))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.ordersByID = ordersByID
	s.customers = customers
	s.customersByID = customersByID
	s.items = items
	s.settings = snapshot.Settings
}

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, cloneOrder(o))
	}
	return orders, nil
}

func (s *Store) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	order := cloneOrder(s.orders[idx])
	if order.Customer == nil {
		if cidx, ok := s.customersByID[order.CustomerID]; ok {
			customer := s.customers[cidx]
			order.Customer = &customer
		}
	}
	return &order, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers), nil
}

func (s *Store) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.customersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	customer := s.customers[idx]
	return &customer, nil
}

func (s *Store) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, cloneItem(item))
	}
	return items, nil
}

func (s *Store) GetSettings(_ context.Context) (domain.StoreSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRequest
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidRequest
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRequest
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.Items = make([]domain.OrderLine, 0, len(src.Items))
	for _, line := range src.Items {
		if line.GST != nil {
			rate := *line.GST
			line.GST = &rate
		}
		dst.Items = append(dst.Items, line)
	}
	if src.Customer != nil {
		customer := *src.Customer
		dst.Customer = &customer
	}
	return dst
}

func cloneItem(src domain.Item) domain.Item {
	dst := src
	if src.GSTRate != nil {
		rate := *src.GSTRate
		dst.GSTRate = &rate
	}
	return dst
}
