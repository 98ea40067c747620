package domain

import (
	"encoding/json"
	"time"
)

type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     string      `json:"status"`
	Total      Amount      `json:"total"`
	CreatedAt  Timestamp   `json:"created_at"`
	UpdatedAt  Timestamp   `json:"updated_at"`
	Items      []OrderLine `json:"items"`
	Customer   *Customer   `json:"customer,omitempty"`
}

// OccurredAt is the instant an order counts towards a period: created_at, or
// updated_at when the creation stamp is missing. A malformed created_at stays
// invalid.
func (o Order) OccurredAt() time.Time {
	if o.CreatedAt.Present {
		return o.CreatedAt.Time
	}
	return o.UpdatedAt.Time
}

type OrderLine struct {
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"qty"`
	Price    Amount `json:"price"`
	GST      *int   `json:"gst,omitempty"`
	Name     string `json:"name,omitempty"`
	SKU      string `json:"sku,omitempty"`
}

type nestedLineItem struct {
	ID    json.RawMessage `json:"id"`
	Name  string          `json:"name"`
	Price *Amount         `json:"price"`
}

func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID   json.RawMessage `json:"item_id"`
		ID       json.RawMessage `json:"id"`
		Qty      json.RawMessage `json:"qty"`
		Quantity json.RawMessage `json:"quantity"`
		Price    *Amount         `json:"price"`
		GST      json.RawMessage `json:"gst"`
		GSTRate  json.RawMessage `json:"gst_rate"`
		Name     string          `json:"name"`
		SKU      string          `json:"sku"`
		Item     *nestedLineItem `json:"item"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = OrderLine{Name: raw.Name, SKU: raw.SKU, Quantity: 1}

	if id, ok := flexInt(raw.ItemID); ok {
		l.ItemID = id
	} else if id, ok := flexInt(raw.ID); ok {
		l.ItemID = id
	} else if raw.Item != nil {
		if id, ok := flexInt(raw.Item.ID); ok {
			l.ItemID = id
		}
	}

	qty, ok := flexFloat(raw.Qty)
	if !ok || qty <= 0 {
		qty, ok = flexFloat(raw.Quantity)
	}
	if ok && qty >= 1 {
		l.Quantity = int(qty)
	}

	switch {
	case raw.Price != nil:
		l.Price = *raw.Price
	case raw.Item != nil && raw.Item.Price != nil:
		l.Price = *raw.Item.Price
	}
	if l.Name == "" && raw.Item != nil {
		l.Name = raw.Item.Name
	}

	if rate, ok := flexInt(raw.GST); ok {
		r := int(rate)
		l.GST = &r
	} else if rate, ok := flexInt(raw.GSTRate); ok {
		r := int(rate)
		l.GST = &r
	}
	return nil
}

type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	GSTIN       string    `json:"gstin,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

type Item struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Category     string `json:"category"`
	Price        Amount `json:"price"`
	Stock        int    `json:"stock"`
	ReorderPoint int    `json:"reorder_point"`
	GSTRate      *int   `json:"gst_rate,omitempty"`
}

// LowOnStock reports whether stock has reached the reorder point.
func (i Item) LowOnStock() bool {
	return i.Stock <= i.ReorderPoint
}

// StoreSettings is the seller profile used on receipts. ShowTax is the
// default tax visibility on printed receipts.
type StoreSettings struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	GSTIN       string `json:"gstin"`
	Currency    string `json:"currency"`
	ShowTax     bool   `json:"show_tax"`
}

// Snapshot is a point-in-time copy of everything the reports read.
type Snapshot struct {
	Orders    []Order       `json:"orders"`
	Customers []Customer    `json:"customers"`
	Items     []Item        `json:"items"`
	Settings  StoreSettings `json:"settings"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
