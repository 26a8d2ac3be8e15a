package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	if issuer == nil {
		t.Fatal("issuer should not be nil with a secret")
	}

	token, err := issuer.Issue("Chaitu")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Speaker != "Chaitu" {
		t.Errorf("speaker = %q, want Chaitu", claims.Speaker)
	}
	if claims.ExpiresAt == nil {
		t.Error("token should carry an expiry")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-one").Issue("Chaitu")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenIssuer("secret-two").Validate(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestNewTokenIssuerEmptySecret(t *testing.T) {
	if issuer := NewTokenIssuer(""); issuer != nil {
		t.Error("empty secret should disable authentication")
	}
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	token, err := issuer.Issue("Chaitu")
	if err != nil {
		t.Fatal(err)
	}

	handler := issuer.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("speaker").(string))
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			status := rec.Code
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != "Chaitu" {
				t.Errorf("speaker not propagated: %q", rec.Body.String())
			}
		})
	}
}

func TestNilIssuerMiddlewarePassesThrough(t *testing.T) {
	var issuer *TokenIssuer

	handler := issuer.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("nil issuer must not require auth: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
