package models

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	in := time.Date(2023, 11, 14, 23, 45, 12, 0, loc)
	got := NormalizeDate(in)
	want := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NormalizeDate(%v) = %v, want %v", in, got, want)
	}
	if got2 := NormalizeDate(got); !got2.Equal(got) {
		t.Errorf("NormalizeDate not idempotent: %v -> %v", got, got2)
	}
}
