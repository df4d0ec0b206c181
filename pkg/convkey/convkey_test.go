package convkey

import (
	"errors"
	"testing"

	"github.com/emirhan/joblink/pkg"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		idA     string
		idB     string
		want    string
		wantErr bool
	}{
		{
			name: "already sorted",
			idA:  "u1",
			idB:  "u2",
			want: "u1_u2",
		},
		{
			name: "reversed arguments yield same key",
			idA:  "u2",
			idB:  "u1",
			want: "u1_u2",
		},
		{
			name: "uuid-style ids",
			idA:  "f47ac10b-58cc-4372-a567-0e02b2c3d479",
			idB:  "0e02b2c3-d479-4372-a567-f47ac10b58cc",
			want: "0e02b2c3-d479-4372-a567-f47ac10b58cc_f47ac10b-58cc-4372-a567-0e02b2c3d479",
		},
		{
			name: "same participant twice",
			idA:  "u1",
			idB:  "u1",
			want: "u1_u1",
		},
		{
			name:    "empty first id",
			idA:     "",
			idB:     "u2",
			wantErr: true,
		},
		{
			name:    "empty second id",
			idA:     "u1",
			idB:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(tt.idA, tt.idB)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Derive(%q, %q) expected error, got %q", tt.idA, tt.idB, got)
				}
				if !errors.Is(err, pkg.ErrBadRequest) {
					t.Errorf("Derive(%q, %q) error = %v, want ErrBadRequest", tt.idA, tt.idB, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Derive(%q, %q) unexpected error: %v", tt.idA, tt.idB, err)
			}
			if got != tt.want {
				t.Errorf("Derive(%q, %q) = %q, want %q", tt.idA, tt.idB, got, tt.want)
			}
		})
	}
}

// TestDeriveCommutative, anahtarın argüman sırasından bağımsız olduğunu doğrular.
func TestDeriveCommutative(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"employer-42", "employee-7"},
		{"zzz", "aaa"},
		{"10", "9"}, // lexicographic, numeric değil: "10" < "9"
	}

	for _, p := range pairs {
		ab, err := Derive(p[0], p[1])
		if err != nil {
			t.Fatalf("Derive(%q, %q): %v", p[0], p[1], err)
		}
		ba, err := Derive(p[1], p[0])
		if err != nil {
			t.Fatalf("Derive(%q, %q): %v", p[1], p[0], err)
		}
		if ab != ba {
			t.Errorf("Derive not commutative for (%q, %q): %q != %q", p[0], p[1], ab, ba)
		}
	}
}

func TestSort(t *testing.T) {
	low, high := Sort("u2", "u1")
	if low != "u1" || high != "u2" {
		t.Errorf("Sort(u2, u1) = (%q, %q), want (u1, u2)", low, high)
	}
}
