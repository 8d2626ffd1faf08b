package models

import (
	"testing"
	"time"
)

func TestInferTypeForLegacyRecords(t *testing.T) {
	start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	cases := []struct {
		name string
		rec  TransactionRecord
		want string
	}{
		{"explicit type wins", TransactionRecord{Type: TxnTopUp, StartTime: &start, EndTime: &end}, TxnTopUp},
		{"both times is a return", TransactionRecord{StartTime: &start, EndTime: &end}, TxnReturn},
		{"start alone is a rent", TransactionRecord{StartTime: &start}, TxnRent},
		{"amount without fee is a topup", TransactionRecord{Amount: 100}, TxnTopUp},
		{"amount with fee stays unknown", TransactionRecord{Amount: 100, Fee: 50}, ""},
		{"empty record stays unknown", TransactionRecord{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.InferType(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
