package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		input      string
		ok         bool
		hour, min  int
		wantSecond int
	}{
		{"08:00", true, 8, 0, 0},
		{"18:30:15", true, 18, 30, 15},
		{" 22:05 ", true, 22, 5, 0},
		{"24:00", false, 0, 0, 0},
		{"8am", false, 0, 0, 0},
		{"", false, 0, 0, 0},
	}
	for _, c := range cases {
		got, ok := ParseClock(c.input)
		if ok != c.ok {
			t.Errorf("ParseClock(%q) ok = %v, want %v", c.input, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Hour() != c.hour || got.Minute() != c.min || got.Second() != c.wantSecond {
			t.Errorf("ParseClock(%q) = %s", c.input, got.Format("15:04:05"))
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"FULL", "HALF"}
	if !IsInSlice("HALF", slice) {
		t.Errorf("IsInSlice(HALF) = false, want true")
	}
	if IsInSlice("half", slice) {
		t.Errorf("IsInSlice(half) = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "time_in", Message: "time_in and time_out must be provided together"},
		{Field: "status", Message: "status is required"},
	}
	want := "time_in: time_in and time_out must be provided together; status: status is required"
	if errs.Error() != want {
		t.Errorf("Error() = %q, want %q", errs.Error(), want)
	}
	m := errs.ToMap()
	if len(m) != 2 || m["status"] != "status is required" {
		t.Errorf("ToMap() = %v", m)
	}
}
