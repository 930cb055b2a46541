package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestNumericDecimalRoundTrip(t *testing.T) {
	values := []string{
		"0",
		"1000.00",
		"0.0001",
		"-42.5",
		"999999999999.9999",
	}

	for _, v := range values {
		d := decimal.RequireFromString(v)

		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Errorf("round trip of %s produced %s", v, got)
		}
	}
}

func TestNumericToDecimalNull(t *testing.T) {
	d := numericToDecimal(pgtype.Numeric{})
	if !d.IsZero() {
		t.Errorf("expected zero for null numeric, got %s", d)
	}
}
