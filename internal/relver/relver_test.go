package relver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain release", "1.2.3", false},
		{"zeros", "0.0.0", false},
		{"large components", "10.20.30", false},
		{"v prefix rejected", "v1.0.0", true},
		{"prerelease rejected", "1.0.0-rc1", true},
		{"build metadata rejected", "1.0.0+build5", true},
		{"two components rejected", "1.0", true},
		{"four components rejected", "1.0.0.0", true},
		{"leading zero rejected", "01.0.0", true},
		{"negative rejected", "-1.0.0", true},
		{"empty rejected", "", true},
		{"garbage rejected", "release-1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestMax(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
		wantOK     bool
	}{
		{
			// 1.10.0 sorts above 1.9.0 numerically even though "1.9.0" is
			// the lexically greater string.
			name:       "numeric not lexical minor",
			candidates: []string{"1.9.0", "1.10.0"},
			want:       "1.10.0",
			wantOK:     true,
		},
		{
			name:       "numeric not lexical major",
			candidates: []string{"9.9.9", "10.0.0"},
			want:       "10.0.0",
			wantOK:     true,
		},
		{
			name:       "mixed set",
			candidates: []string{"1.9.0", "1.10.0", "2.0.0"},
			want:       "2.0.0",
			wantOK:     true,
		},
		{
			name:       "non-release candidates skipped",
			candidates: []string{"v3.0.0", "2.0.0-rc1", "1.0.0"},
			want:       "1.0.0",
			wantOK:     true,
		},
		{
			name:       "only non-release candidates",
			candidates: []string{"v1.0.0", "1.0.0-rc1", "latest"},
			wantOK:     false,
		},
		{
			name:   "empty set",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Max(tt.candidates)
			if ok != tt.wantOK {
				t.Fatalf("Max(%v) ok = %v, want %v", tt.candidates, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Max(%v) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}

func TestIsRelease(t *testing.T) {
	if !IsRelease("1.2.3") {
		t.Error("IsRelease(1.2.3) = false, want true")
	}
	if IsRelease("v1.2.3") {
		t.Error("IsRelease(v1.2.3) = true, want false")
	}
}
