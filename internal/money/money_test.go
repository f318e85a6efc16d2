package money

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{in: "12.5", want: "12.50"},
		{in: " 7 ", want: "7.00"},
		{in: "0.10", want: "0.10"},
		{in: "1.234", err: ErrTooManyDecimals},
		{in: "", err: ErrInvalidAmount},
		{in: "abc", err: ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("Parse(%q): expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", tc.in, err)
		}
		if Format(got) != tc.want {
			t.Fatalf("Parse(%q) = %s, want %s", tc.in, Format(got), tc.want)
		}
	}
}

func TestParsePositiveRejectsZeroAndNegative(t *testing.T) {
	for _, in := range []string{"0", "-3", "0.00"} {
		if _, err := ParsePositive(in); !errors.Is(err, ErrNotPositive) {
			t.Fatalf("ParsePositive(%q): expected ErrNotPositive, got %v", in, err)
		}
	}
}

func TestRequirePositiveRejectsSubCent(t *testing.T) {
	if err := RequirePositive(decimal.RequireFromString("0.001")); !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestSum(t *testing.T) {
	total := Sum(decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.RequireFromString("15.25"))
	if Format(total) != "35.25" {
		t.Fatalf("unexpected sum %s", Format(total))
	}
	if !Sum().IsZero() {
		t.Fatalf("empty sum should be zero")
	}
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	payload, err := json.Marshal(map[string]decimal.Decimal{"amount": decimal.RequireFromString("12.5")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"amount":12.5}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}
