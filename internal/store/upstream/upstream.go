// Package upstream reads orders, customers, items and settings from the
// InvoiceFlow REST backend.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/store"
)

const maxResponseBytes = 32 << 20

type Store struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(baseURL string, token string) *Store {
	return &Store{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Ping checks that the backend answers its health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream health returned %d", resp.StatusCode)
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := s.get(ctx, "/orders/", &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// GetOrder scans the order listing; the backend exposes no single-order read.
func (s *Store) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		order := orders[i]
		if order.Customer == nil && order.CustomerID > 0 {
			customer, err := s.GetCustomer(ctx, order.CustomerID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			order.Customer = customer
		}
		return &order, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := s.get(ctx, "/customers/", &customers); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	if err := s.get(ctx, "/customers/"+strconv.FormatInt(id, 10), &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := s.get(ctx, "/items/", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (s *Store) GetSettings(ctx context.Context) (domain.StoreSettings, error) {
	settings := domain.StoreSettings{Currency: "INR", ShowTax: true}
	if err := s.get(ctx, "/settings/", &settings); err != nil {
		return domain.StoreSettings{}, err
	}
	return settings, nil
}

func (s *Store) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return store.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
