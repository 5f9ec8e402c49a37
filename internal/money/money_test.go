package money

import (
	"errors"
	"testing"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

func TestMultiplyByFraction(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		fraction float64
		want     int64
		wantErr  bool
	}{
		{name: "ten percent off", amount: 150, fraction: 0.9, want: 135},
		{name: "half rounds up", amount: 33, fraction: 0.5, want: 17},
		{name: "just below half rounds down", amount: 333, fraction: 0.1, want: 33},
		{name: "identity", amount: 12345, fraction: 1.0, want: 12345},
		{name: "zero amount", amount: 0, fraction: 0.9, want: 0},
		{name: "zero fraction", amount: 100, fraction: 0, want: 0},
		{name: "large amount exact", amount: 1000000, fraction: 0.85, want: 850000},
		{name: "single unit half up", amount: 1, fraction: 0.5, want: 1},
		{name: "repeating product", amount: 100, fraction: 0.333, want: 33},
		{name: "negative amount rejected", amount: -1, fraction: 0.9, wantErr: true},
		{name: "negative fraction rejected", amount: 100, fraction: -0.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultiplyByFraction(tt.amount, tt.fraction)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MultiplyByFraction(%d, %v) error = %v, wantErr %v", tt.amount, tt.fraction, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidAmount) {
					t.Errorf("error = %v, want ErrInvalidAmount", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("MultiplyByFraction(%d, %v) = %d, want %d", tt.amount, tt.fraction, got, tt.want)
			}
		})
	}
}

func TestDistributeRemainder(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		shares  []int64
		want    []int64
		wantErr bool
	}{
		{
			name:   "exact proportional split",
			total:  135,
			shares: []int64{100, 50},
			want:   []int64{90, 45},
		},
		{
			name:   "equal thirds leftover to first",
			total:  100,
			shares: []int64{1, 1, 1},
			want:   []int64{34, 33, 33},
		},
		{
			name:   "largest remainder wins the unit",
			total:  10,
			shares: []int64{2, 7}, // raw 2.22 and 7.77
			want:   []int64{2, 8},
		},
		{
			name:   "zero weight share gets nothing",
			total:  10,
			shares: []int64{5, 0, 5},
			want:   []int64{5, 0, 5},
		},
		{
			name:   "zero total",
			total:  0,
			shares: []int64{3, 4},
			want:   []int64{0, 0},
		},
		{
			name:   "zero weights with zero total",
			total:  0,
			shares: []int64{0, 0},
			want:   []int64{0, 0},
		},
		{
			name:    "zero weights with nonzero total rejected",
			total:   5,
			shares:  []int64{0, 0},
			wantErr: true,
		},
		{
			name:    "negative total rejected",
			total:   -1,
			shares:  []int64{1},
			wantErr: true,
		},
		{
			name:    "negative share rejected",
			total:   10,
			shares:  []int64{5, -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DistributeRemainder(tt.total, tt.shares)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DistributeRemainder(%d, %v) error = %v, wantErr %v", tt.total, tt.shares, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidAmount) {
					t.Errorf("error = %v, want ErrInvalidAmount", err)
				}
				return
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			var sum int64
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d = %d, want %d (full %v)", i, got[i], tt.want[i], got)
				}
				if got[i] < 0 {
					t.Errorf("index %d = %d, negative amounts are never valid", i, got[i])
				}
				sum += got[i]
			}
			if sum != tt.total {
				t.Errorf("sum = %d, want exactly %d", sum, tt.total)
			}
		})
	}
}

func TestDistributeRemainderAlwaysSumsToTotal(t *testing.T) {
	// Uneven weights across a range of totals; the exact per-share
	// amounts vary but the sum invariant must hold everywhere.
	shares := []int64{7, 13, 29, 1, 50}
	for total := int64(0); total <= 500; total++ {
		got, err := DistributeRemainder(total, shares)
		if err != nil {
			t.Fatalf("DistributeRemainder(%d, %v) failed: %v", total, shares, err)
		}
		var sum int64
		for _, v := range got {
			if v < 0 {
				t.Fatalf("total %d produced negative entry %v", total, got)
			}
			sum += v
		}
		if sum != total {
			t.Fatalf("total %d distributed to %v (sum %d)", total, got, sum)
		}
	}
}
