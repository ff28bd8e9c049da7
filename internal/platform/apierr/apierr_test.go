package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errSentinel = errors.New("profile not found")

func TestFromKeepsWrappedStatus(t *testing.T) {
	wrapped := fmt.Errorf("update streak: %w", NotFound("profile_not_found", errSentinel))

	ae := From(wrapped)
	if ae.Status != http.StatusNotFound || ae.Code != "profile_not_found" {
		t.Fatalf("unexpected api error: %+v", ae)
	}
	if !errors.Is(wrapped, errSentinel) {
		t.Fatalf("sentinel should match through the wrapper")
	}
}

func TestFromDefaultsToInternal(t *testing.T) {
	ae := From(errors.New("boom"))
	if ae.Status != http.StatusInternalServerError || ae.Code != "internal" {
		t.Fatalf("unexpected api error: %+v", ae)
	}
	if From(nil) != nil {
		t.Fatalf("nil error should map to nil")
	}
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{"cause", New(400, "invalid_points", errors.New("amount must be positive")), "amount must be positive"},
		{"code_only", New(401, "unauthenticated", nil), "unauthenticated"},
		{"status_only", New(502, "", nil), "api error (502)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error()=%q, want %q", got, tc.want)
			}
		})
	}
}
