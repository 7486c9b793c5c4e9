package utils

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"negative clamps to zero", -5, "0 B"},
		{"bytes", 512, "512 B"},
		{"kilobytes", 2048, "2.00 KB"},
		{"megabytes", 5 * MB, "5.00 MB"},
		{"gigabytes", 3 * GB, "3.00 GB"},
		{"terabytes", 2 * TB, "2.00 TB"},
		{"fractional", 1536, "1.50 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "0 days"},
		{1, "1 day"},
		{31, "31 days"},
	}

	for _, tt := range tests {
		if got := FormatAge(tt.days); got != tt.want {
			t.Errorf("FormatAge(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
