package validation

import (
	"strings"
	"testing"
	"time"
)

func TestIsValidName(t *testing.T) {
	for n := 2; n <= 50; n++ {
		s := strings.Repeat("a", n)
		if n > 3 {
			s = "Jo " + strings.Repeat("b", n-3)
		}
		if !IsValidName(s) {
			t.Fatalf("length %d: expected valid for %q", n, s)
		}
	}
	for _, s := range []string{"", "a", strings.Repeat("x", 51), "   a   "} {
		if IsValidName(s) {
			t.Fatalf("expected invalid for %q", s)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	for n := 10; n <= 15; n++ {
		digits := strings.Repeat("9", n)
		if !IsValidPhone(digits) {
			t.Fatalf("%d digits should be valid", n)
		}
		if n < 15 && !IsValidPhone("+"+digits) {
			t.Fatalf("+%d digits should be valid", n)
		}
	}
	for _, s := range []string{"", "123456789", strings.Repeat("1", 16), "12345abcde", "++1234567890"} {
		if IsValidPhone(s) {
			t.Fatalf("expected invalid phone %q", s)
		}
	}
	if !IsValidPhone("98765 43210") || !IsValidPhone("987-654-3210") {
		t.Fatalf("spaces and dashes are allowed")
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"john@example.com":  true,
		"a.b@shop.co.in":    true,
		"john@example":      false,
		"john@@example.com": false,
		"john example@x.io": false,
		"":                  false,
	}
	for in, want := range cases {
		if got := IsValidEmail(in); got != want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsFutureDate(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.Local)

	cases := map[string]bool{
		"2026-10-19":           true, // today counts
		"2026-10-20":           true,
		"2026-10-18":           false,
		"not-a-date":           false,
		"":                     false,
		"2026-11-01T10:00:00Z": true,
	}
	for in, want := range cases {
		if got := IsFutureDate(in, now); got != want {
			t.Errorf("IsFutureDate(%q) = %v, want %v", in, got, want)
		}
	}
	if !IsNotFutureDate("2026-10-19", now) || IsNotFutureDate("2026-10-20", now) {
		t.Fatalf("IsNotFutureDate boundaries wrong")
	}
}

func TestNumericGuards(t *testing.T) {
	if !IsPositiveNumber("12.5") || IsPositiveNumber("0") || IsPositiveNumber("") || IsPositiveNumber("abc") {
		t.Fatalf("IsPositiveNumber coercion wrong")
	}
	if !IsNonNegativeNumber("0") || !IsNonNegativeNumber(3) || IsNonNegativeNumber("-1") {
		t.Fatalf("IsNonNegativeNumber coercion wrong")
	}
	if !IsPositiveInteger("2") || IsPositiveInteger("2.5") || IsPositiveInteger(0) || IsPositiveInteger("-3") {
		t.Fatalf("IsPositiveInteger coercion wrong")
	}
	if IsPositiveNumber("NaN") {
		t.Fatalf("NaN is not a number")
	}
}

func TestFileChecks(t *testing.T) {
	if !IsValidImageFile(FileInfo{ContentType: "image/png"}) || IsValidImageFile(FileInfo{ContentType: "application/pdf"}) {
		t.Fatalf("image type check wrong")
	}
	if !IsValidFileSize(FileInfo{Size: MaxFileSize}) || IsValidFileSize(FileInfo{Size: MaxFileSize + 1}) {
		t.Fatalf("size check wrong")
	}
}
