package utils

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("MIPY_TEST_VALUE", "")
	if got := GetEnv("MIPY_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("GetEnv(empty) = %q, want %q", got, "fallback")
	}
	t.Setenv("MIPY_TEST_VALUE", "set")
	if got := GetEnv("MIPY_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv(set) = %q, want %q", got, "set")
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		raw    string
		want   bool
		wantOK bool
	}{
		{"True", true, true},
		{"on", true, true},
		{"0", false, true},
		{"False", false, true},
		{"", false, false},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Setenv("MIPY_TEST_BOOL", tt.raw)
		got, ok := EnvBool("MIPY_TEST_BOOL")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("EnvBool(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
