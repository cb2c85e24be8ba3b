package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeCashback(t *testing.T) {
	t.Parallel()

	dec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return d
	}
	capOf := func(s string) *decimal.Decimal {
		d := dec(s)
		return &d
	}

	tests := []struct {
		name   string
		amount string
		rule   *CashbackRule
		want   string
	}{
		{
			name:   "default rate when no rule",
			amount: "100",
			rule:   nil,
			want:   "5.00",
		},
		{
			name:   "rate without cap",
			amount: "100",
			rule:   &CashbackRule{Rate: dec("0.05")},
			want:   "5.00",
		},
		{
			name:   "cap clamps computed value",
			amount: "1000",
			rule:   &CashbackRule{Rate: dec("0.10"), Cap: capOf("50")},
			want:   "50.00",
		},
		{
			name:   "cap above computed value is ignored",
			amount: "100",
			rule:   &CashbackRule{Rate: dec("0.10"), Cap: capOf("50")},
			want:   "10.00",
		},
		{
			name:   "rounds half up to two decimals",
			amount: "33.33",
			rule:   &CashbackRule{Rate: dec("0.05")},
			want:   "1.67",
		},
		{
			name:   "exact half rounds up",
			amount: "10.10",
			rule:   &CashbackRule{Rate: dec("0.05")},
			want:   "0.51",
		},
		{
			name:   "zero rate",
			amount: "250",
			rule:   &CashbackRule{Rate: dec("0")},
			want:   "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCashback(dec(tt.amount), tt.rule)
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
