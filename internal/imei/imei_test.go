package imei

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"356938035643809":    "356938035643809",
		"356938 035643809":   "356938035643809",
		"356938-035-643-809": "356938035643809",
		" 356938035643809\t": "356938035643809",
		"3569 38035643809":   "356938035643809",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("356938035643809") {
		t.Error("Expected 15-digit IMEI to be valid")
	}
	if Valid("12345") {
		t.Error("Short string should be invalid")
	}
	if Valid("35693803564380a") {
		t.Error("Non-numeric string should be invalid")
	}
	if Valid("3569380356438091") {
		t.Error("16-digit string should be invalid")
	}
	if Valid("") {
		t.Error("Empty string should be invalid")
	}
}

func TestLuhnValid(t *testing.T) {
	// 356938035643809 is the canonical GSMA example with a correct check digit
	if !LuhnValid("356938035643809") {
		t.Error("Expected known-good IMEI to pass Luhn check")
	}
	// Same digits, check digit off by one
	if LuhnValid("356938035643808") {
		t.Error("Expected corrupted check digit to fail Luhn check")
	}
	// Malformed input can never pass
	if LuhnValid("12345") {
		t.Error("Malformed IMEI should fail Luhn check")
	}
}
