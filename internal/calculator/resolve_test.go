package calculator

import (
	"errors"
	"testing"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

func TestValidateDiscount(t *testing.T) {
	tests := []struct {
		name    string
		dt      models.DiscountType
		value   float64
		wantErr bool
	}{
		{name: "none with zero", dt: models.DiscountNone, value: 0},
		{name: "none with nonzero value", dt: models.DiscountNone, value: 0.5, wantErr: true},
		{name: "percent lower bound open", dt: models.DiscountPercent, value: 0, wantErr: true},
		{name: "percent in range", dt: models.DiscountPercent, value: 0.9},
		{name: "percent upper bound closed", dt: models.DiscountPercent, value: 1},
		{name: "percent above one", dt: models.DiscountPercent, value: 1.5, wantErr: true},
		{name: "percent negative", dt: models.DiscountPercent, value: -0.1, wantErr: true},
		{name: "amount zero", dt: models.DiscountAmount, value: 0},
		{name: "amount whole units", dt: models.DiscountAmount, value: 20},
		{name: "amount fractional", dt: models.DiscountAmount, value: 20.5, wantErr: true},
		{name: "amount negative", dt: models.DiscountAmount, value: -5, wantErr: true},
		{name: "unknown type", dt: models.DiscountType("bogus"), value: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDiscount(tt.dt, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDiscount(%q, %v) error = %v, wantErr %v", tt.dt, tt.value, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, models.ErrInvalidDiscount) {
				t.Errorf("error = %v, want ErrInvalidDiscount", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		dt         models.DiscountType
		value      float64
		adjustment int64
		subtotal   int64
		want       int64
		wantErr    error
	}{
		{name: "none passthrough", dt: models.DiscountNone, subtotal: 150, want: 150},
		{name: "none with adjustment", dt: models.DiscountNone, adjustment: 1, subtotal: 33, want: 34},
		{name: "percent ten off", dt: models.DiscountPercent, value: 0.9, subtotal: 150, want: 135},
		{name: "percent rounds half up", dt: models.DiscountPercent, value: 0.5, subtotal: 33, want: 17},
		{name: "percent with fee", dt: models.DiscountPercent, value: 0.8, adjustment: 60, subtotal: 200, want: 220},
		{name: "amount discount with fee", dt: models.DiscountAmount, value: 20, adjustment: 5, subtotal: 150, want: 135},
		{name: "amount exceeding subtotal floors at zero", dt: models.DiscountAmount, value: 500, adjustment: 30, subtotal: 100, want: 30},
		{name: "negative final preserved for audit", dt: models.DiscountNone, adjustment: -200, subtotal: 150, want: -50},
		{name: "invalid percent surfaces", dt: models.DiscountPercent, value: 1.5, subtotal: 100, wantErr: models.ErrInvalidDiscount},
		{name: "negative subtotal rejected", dt: models.DiscountNone, subtotal: -1, wantErr: models.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.dt, tt.value, tt.adjustment, tt.subtotal)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %d, want %d", got, tt.want)
			}
		})
	}
}
