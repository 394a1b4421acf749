package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDurata(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"02:30", 2*time.Hour + 30*time.Minute, false},
		{"0:05", 5 * time.Minute, false},
		{"25:00", 25 * time.Hour, false},
		{"125:59", 125*time.Hour + 59*time.Minute, false},
		{"02:60", 0, true},
		{"02", 0, true},
		{"02:30:00", 0, true},
		{"-1:00", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDurata(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDurata(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDurata(%q): %v", tt.in, err)
			continue
		}
		if got.Duration != tt.want {
			t.Errorf("ParseDurata(%q) = %v, want %v", tt.in, got.Duration, tt.want)
		}
	}
}

func TestParseDurataHHMMSS(t *testing.T) {
	got, err := ParseDurataHHMMSS("03:15:30")
	if err != nil {
		t.Fatalf("ParseDurataHHMMSS: %v", err)
	}
	want := 3*time.Hour + 15*time.Minute + 30*time.Second
	if got.Duration != want {
		t.Fatalf("got %v, want %v", got.Duration, want)
	}

	for _, bad := range []string{"03:15", "3:5:30", "03:75:00", "x"} {
		if _, err := ParseDurataHHMMSS(bad); err == nil {
			t.Errorf("ParseDurataHHMMSS(%q) expected error", bad)
		}
	}
}

func TestDurataString(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{5 * time.Minute, "00:05"},
		{2*time.Hour + 30*time.Minute, "02:30"},
		{25 * time.Hour, "25:00"},
		// Seconds truncate.
		{time.Hour + 59*time.Second, "01:00"},
	}
	for _, tt := range tests {
		if got := (Durata{tt.d}).String(); got != tt.want {
			t.Errorf("String(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDurataJSONRoundTrip(t *testing.T) {
	in := Durata{90 * time.Minute}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"01:30"` {
		t.Fatalf("marshal = %s", b)
	}

	var out Durata
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Duration != in.Duration {
		t.Fatalf("round trip = %v, want %v", out.Duration, in.Duration)
	}

	if err := json.Unmarshal([]byte(`"2:66"`), &out); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestNormalizeInizio(t *testing.T) {
	in := time.Date(2026, 3, 15, 6, 30, 0, 0, time.FixedZone("CET", 3600))
	got := NormalizeInizio(in)

	if got.Year() != AbstractYear {
		t.Fatalf("year = %d, want %d", got.Year(), AbstractYear)
	}
	if got.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", got.Location())
	}
	// 06:30 CET is 05:30 UTC.
	if got.Month() != time.March || got.Day() != 15 || got.Hour() != 5 || got.Minute() != 30 {
		t.Fatalf("normalized = %v", got)
	}
}
