package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"invoiceflow/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func plainAdminStore() *userStoreStub {
	return &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      domain.RoleAdmin,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := plainAdminStore()

	manager := NewAuthManager("test-secret", time.Hour, store)
	resp, err := manager.Login(context.Background(), domain.LoginRequest{
		Username: "Admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != domain.RoleAdmin || resp.TokenType != "bearer" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
	if store.updates == 0 {
		t.Fatalf("expected the upgraded hash to be written back")
	}
}

func TestAuthManagerRejectsInactiveAccount(t *testing.T) {
	store := &userStoreStub{users: map[string]domain.UserAccount{
		"former": {Username: "former", Password: "secret-pass", Role: domain.RoleUser, Active: false},
	}}
	manager := NewAuthManager("test-secret", time.Hour, store)

	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "former", Password: "secret-pass"}); err == nil {
		t.Fatalf("expected inactive account to be rejected")
	}
	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "secret-pass"}); err != errInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestCreateUserStoresPasswordHash(t *testing.T) {
	store := plainAdminStore()
	manager := NewAuthManager("test-secret", time.Hour, store)
	ctx := context.Background()

	user, err := manager.CreateUser(ctx, UserCreateRequest{Username: "Analyst", Password: "pass12345"})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Username != "analyst" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", user)
	}

	saved, ok := store.users["analyst"]
	if !ok {
		t.Fatalf("expected user to be saved")
	}
	if !strings.HasPrefix(saved.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", saved.Password)
	}

	if _, err := manager.Login(ctx, domain.LoginRequest{Username: "analyst", Password: "pass12345"}); err != nil {
		t.Fatalf("login with created user failed: %v", err)
	}
	if _, err := manager.CreateUser(ctx, UserCreateRequest{Username: "analyst", Password: "pass12345"}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
}

func TestCreateUserValidatesInput(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, &userStoreStub{})
	ctx := context.Background()

	cases := []UserCreateRequest{
		{Username: "abc", Password: "pass12345"},
		{Username: "two words", Password: "pass12345"},
		{Username: "analyst", Password: "short"},
		{Username: "analyst", Password: "pass12345", Role: "manager"},
	}
	for _, req := range cases {
		if _, err := manager.CreateUser(ctx, req); err == nil {
			t.Fatalf("expected %+v to be rejected", req)
		}
	}
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, nil)

	expired, err := manager.sign("admin", domain.RoleAdmin, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := manager.ParseToken(expired); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}

	foreign := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, reportClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "someone-else",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: domain.RoleAdmin,
	})
	signed, err := foreign.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign foreign token: %v", err)
	}
	if _, err := manager.ParseToken(signed); err == nil {
		t.Fatalf("expected token from another issuer to be rejected")
	}

	valid, err := manager.sign("viewer", domain.RoleUser, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	actor, err := manager.ParseToken(valid)
	if err != nil {
		t.Fatalf("parse valid token: %v", err)
	}
	if actor.Username != "viewer" || actor.Role != domain.RoleUser {
		t.Fatalf("unexpected actor %+v", actor)
	}
}
