package payment

import (
	"testing"

	"github.com/volt-campus/VoltRentalAPI/internal/config"
)

func TestUserFromOrderID(t *testing.T) {
	cases := []struct {
		orderID string
		want    string
		wantErr bool
	}{
		{"topup-u1-1700000000000", "u1", false},
		{"topup-user-with-dashes-1700000000000", "user-with-dashes", false},
		{"topup-1700000000000", "", true},
		{"other-u1-1700000000000", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := userFromOrderID(tc.orderID)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", tc.orderID, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.orderID, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.orderID, tc.want, got)
		}
	}
}

func TestServiceDisabledWithoutServerKey(t *testing.T) {
	svc := NewService(config.MidtransConfig{}, nil)
	if svc.Enabled() {
		t.Fatal("expected service disabled without a server key")
	}
}
