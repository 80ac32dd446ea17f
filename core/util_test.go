package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		num, den int
		want     *float64
	}{
		{name: "no denominator", num: 3, den: 0, want: nil},
		{name: "half", num: 1, den: 2, want: floatPtr(50)},
		{name: "rounded to 2 decimals", num: 1, den: 3, want: floatPtr(33.33)},
		{name: "rounded up", num: 2, den: 3, want: floatPtr(66.67)},
		{name: "full", num: 4, den: 4, want: floatPtr(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(tt.num, tt.den)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Percentage() = %v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Percentage() = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		f    float64
		dec  int
		want float64
	}{
		{f: 77.499, dec: 2, want: 77.5},
		{f: 77.494, dec: 2, want: 77.49},
		{f: -1.255, dec: 1, want: -1.3},
		{f: 3.7, dec: 0, want: 4},
	}
	for _, tt := range tests {
		if got := Round(tt.f, tt.dec); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.f, tt.dec, got, tt.want)
		}
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    time.Time
		wantErr bool
	}{
		{name: "null", data: `null`},
		{name: "empty", data: `""`},
		{name: "calendar date", data: `"2024-03-01"`, want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", data: `"2024-03-01T10:30:00+02:00"`, want: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
		{name: "garbage", data: `"01/03/2024"`, wantErr: true},
		{name: "not a string", data: `20240301`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.data), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !d.Time.Equal(tt.want) {
				t.Errorf("UnmarshalJSON() = %v, want %v", d.Time, tt.want)
			}
			if tt.want.IsZero() && d.Ptr() != nil {
				t.Errorf("Ptr() = %v, want nil", d.Ptr())
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NewNotFoundError("x")) {
		t.Error("IsNotFound(NotFoundError) = false")
	}
	if IsNotFound(NewConflictError("x")) {
		t.Error("IsNotFound(ConflictError) = true")
	}
}

func floatPtr(f float64) *float64 { return &f }
