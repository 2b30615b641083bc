package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{" on ", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"banana", true, true},
		{"banana", false, false},
	}
	for _, tc := range cases {
		t.Setenv("TEST_BOOL_ENV", tc.value)
		if got := ParseBoolEnv("TEST_BOOL_ENV", tc.def); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	cases := []struct {
		value string
		def   int
		want  int
	}{
		{"", 60, 60},
		{"75", 60, 75},
		{" 80 ", 60, 80},
		{"-5", 60, -5},
		{"not-a-number", 60, 60},
	}
	for _, tc := range cases {
		t.Setenv("TEST_INT_ENV", tc.value)
		if got := ParseIntEnv("TEST_INT_ENV", tc.def); got != tc.want {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", tc.value, tc.def, got, tc.want)
		}
	}
}
