package version

import "testing"

func TestIsDev(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	tests := []struct {
		version  string
		expected bool
	}{
		{"dev", true},
		{"1.0.0", false},
		{"v1.2.3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			if got := IsDev(); got != tt.expected {
				t.Errorf("IsDev() with Version=%q = %v, want %v", tt.version, got, tt.expected)
			}
		})
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() { Version, Commit = origVersion, origCommit }()

	Version = "dev"
	if got := Full(); got != "ringlify version dev (built from source)" {
		t.Errorf("Full() with dev = %q", got)
	}

	Version = "1.2.3"
	Commit = "none"
	if got := Full(); got != "ringlify version 1.2.3" {
		t.Errorf("Full() with 1.2.3 = %q", got)
	}

	Commit = "abc123"
	if got := Full(); got != "ringlify version 1.2.3 (abc123)" {
		t.Errorf("Full() with commit = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "1.0.0"
	if got := UserAgent(); got != "ringlify-cli/1.0.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
