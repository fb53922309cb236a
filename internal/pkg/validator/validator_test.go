package validator

import (
	"math"
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

func TestIsValidLatitude(t *testing.T) {
	valid := []float64{0, -12.0464, 90, -90, 89.999999}
	invalid := []float64{90.0001, -90.0001, 180, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, lat := range valid {
		if !IsValidLatitude(lat) {
			t.Errorf("IsValidLatitude(%v) = false, want true", lat)
		}
	}
	for _, lat := range invalid {
		if IsValidLatitude(lat) {
			t.Errorf("IsValidLatitude(%v) = true, want false", lat)
		}
	}
}

func TestIsValidLongitude(t *testing.T) {
	valid := []float64{0, -77.0428, 180, -180, 179.999999}
	invalid := []float64{180.0001, -180.0001, 360, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, lon := range valid {
		if !IsValidLongitude(lon) {
			t.Errorf("IsValidLongitude(%v) = false, want true", lon)
		}
	}
	for _, lon := range invalid {
		if IsValidLongitude(lon) {
			t.Errorf("IsValidLongitude(%v) = true, want false", lon)
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

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",
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

func TestIsInSlice(t *testing.T) {
	if !IsInSlice("asc", []string{"asc", "desc"}) {
		t.Error(`IsInSlice("asc") = false, want true`)
	}
	if IsInSlice("up", []string{"asc", "desc"}) {
		t.Error(`IsInSlice("up") = true, want false`)
	}
}

func TestValidationErrors_Maps(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Code: "LATITUDE_INVALID", Message: "latitude must be between -90 and 90"},
		{Field: "label", Message: "label is required"},
	}

	m := errs.ToMap()
	if m["latitude"] != "latitude must be between -90 and 90" {
		t.Errorf("ToMap()[latitude] = %q", m["latitude"])
	}

	codes := errs.ToCodeMap()
	if codes["latitude"] != "LATITUDE_INVALID" {
		t.Errorf("ToCodeMap()[latitude] = %q", codes["latitude"])
	}
	if codes["label"] != "label is required" {
		t.Errorf("ToCodeMap()[label] = %q", codes["label"])
	}
}
