package timefmt

import (
	"testing"
	"time"
)

func TestClockTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "afternoon",
			in:   time.Date(2026, 3, 14, 15, 4, 33, 0, time.Local),
			want: "15:04",
		},
		{
			name: "midnight",
			in:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local),
			want: "00:00",
		},
		{
			name: "zero time",
			in:   time.Time{},
			want: InvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClockTime(tt.in); got != tt.want {
				t.Errorf("ClockTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeDay(t *testing.T) {
	// Sabit bir "şimdi" — gece yarısı civarı kenar durumlarını da kapsasın diye
	// günün başına yakın bir an seçildi.
	now := time.Date(2026, 3, 14, 0, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "same day later hour is still today",
			in:   time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local),
			want: "Today",
		},
		{
			name: "same day earlier hour",
			in:   time.Date(2026, 3, 14, 0, 1, 0, 0, time.Local),
			want: "Today",
		},
		{
			name: "previous calendar day",
			in:   time.Date(2026, 3, 13, 23, 59, 0, 0, time.Local),
			want: "Yesterday",
		},
		{
			name: "ten days ago is a plain date",
			in:   time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local),
			want: "Mar 4, 2026",
		},
		{
			name: "yesterday across month boundary",
			in:   time.Date(2026, 2, 28, 10, 0, 0, 0, time.Local),
			want: "Feb 28, 2026",
		},
		{
			name: "zero time",
			in:   time.Time{},
			want: InvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeDayAt(tt.in, now); got != tt.want {
				t.Errorf("relativeDayAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRelativeDayMonthBoundary, ay sınırında "Yesterday" hesabını doğrular.
// AddDate(0,0,-1) kullanımı 1 Mart → 28/29 Şubat geçişini doğru yapar.
func TestRelativeDayMonthBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	in := time.Date(2026, 2, 28, 22, 0, 0, 0, time.Local)

	if got := relativeDayAt(in, now); got != "Yesterday" {
		t.Errorf("relativeDayAt(feb 28, mar 1) = %q, want Yesterday", got)
	}
}
