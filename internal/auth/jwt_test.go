package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/settleup/internal/models"
)

const testSecret = "test-secret-0123456789"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	id, err := m.Authenticate("Bearer " + token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if id.UserID != "user-1" || id.Email != "alice@example.com" {
		t.Errorf("identity = %+v", id)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}
	valid, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expired := NewJWTManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	otherKey, err := NewJWTManager("another-secret-0123456", time.Hour).Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{name: "missing header", header: "", want: ErrMissingToken},
		{name: "wrong scheme", header: "Basic " + valid, want: ErrInvalidToken},
		{name: "no token", header: "Bearer ", want: ErrInvalidToken},
		{name: "garbage", header: "Bearer not-a-jwt", want: ErrInvalidToken},
		{name: "expired", header: "Bearer " + expiredToken, want: ErrInvalidToken},
		{name: "wrong key", header: "Bearer " + otherKey, want: ErrInvalidToken},
		{name: "alg none", header: "Bearer " + none, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Authenticate(tt.header)
			if !errors.Is(err, tt.want) {
				t.Errorf("Authenticate(%q) error = %v, want %v", tt.header, err, tt.want)
			}
		})
	}
}

func TestJWTManager_GenerateRequiresID(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	if _, err := m.Generate(&models.User{Email: "x@example.com"}); err == nil {
		t.Error("Expected error for user without ID")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("Expected no identity on empty context")
	}

	ctx = WithIdentity(ctx, Identity{UserID: "u1", Email: "u1@example.com"})
	id, ok := FromContext(ctx)
	if !ok || id.UserID != "u1" {
		t.Errorf("FromContext = %+v, %v", id, ok)
	}
}

func TestBearerToken(t *testing.T) {
	got, err := BearerToken("bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("BearerToken failed: %v", err)
	}
	if got != "abc.def.ghi" {
		t.Errorf("BearerToken = %q, want abc.def.ghi", got)
	}
}
