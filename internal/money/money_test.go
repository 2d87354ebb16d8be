package money

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromDecimalOverflow(t *testing.T) {
	_, err := FromDecimal(decimal.RequireFromString("1e30"))
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("FromDecimal(1e30) error = %v, want %v", err, ErrOverflow)
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Cents
		want    Cents
		wantErr bool
	}{
		{name: "small", a: 150, b: 250, want: 400},
		{name: "negative", a: -150, b: 50, want: -100},
		{name: "at max", a: math.MaxInt64 - 1, b: 1, want: math.MaxInt64},
		{name: "positive overflow", a: math.MaxInt64, b: 1, wantErr: true},
		{name: "large positives", a: 5e18, b: 5e18, wantErr: true},
		{name: "negative overflow", a: math.MinInt64, b: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Fatalf("Add(%d, %d) error = %v, want %v", tt.a, tt.b, err, ErrOverflow)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add(%d, %d) unexpected error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Add(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFromDecimal(t *testing.T) {
	d := decimal.RequireFromString("19.995")
	got, err := FromDecimal(d)
	if err != nil {
		t.Fatalf("FromDecimal failed: %v", err)
	}
	// 1999.5 rounds to the even neighbour 2000
	if got != 2000 {
		t.Errorf("FromDecimal(19.995) = %d, want 2000", got)
	}
}

func TestCentsFormatting(t *testing.T) {
	c := Cents(-1205)
	if c.String() != "-12.05" {
		t.Errorf("String() = %q, want %q", c.String(), "-12.05")
	}
	if c.Float() != -12.05 {
		t.Errorf("Float() = %v, want -12.05", c.Float())
	}
	if c.Abs() != 1205 {
		t.Errorf("Abs() = %d, want 1205", c.Abs())
	}
}

func TestDivideEven(t *testing.T) {
	tests := []struct {
		total Cents
		n     int
		want  Cents
	}{
		{total: 30000, n: 3, want: 10000},
		{total: 100, n: 3, want: 33},
		{total: 200, n: 3, want: 67},
		{total: 5, n: 2, want: 2},   // 2.5 -> 2
		{total: 7, n: 2, want: 4},   // 3.5 -> 4
		{total: -5, n: 2, want: -2}, // -2.5 -> -2
		{total: 100, n: 0, want: 0},
		{total: 100, n: -1, want: 0},
	}

	for _, tt := range tests {
		if got := DivideEven(tt.total, tt.n); got != tt.want {
			t.Errorf("DivideEven(%d, %d) = %d, want %d", tt.total, tt.n, got, tt.want)
		}
	}
}
