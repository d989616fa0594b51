package models

import (
	"reflect"
	"testing"
)

func TestEncodeLevels(t *testing.T) {
	tests := []struct {
		name    string
		levels  []string
		want    int
		wantErr bool
	}{
		{"single easy", []string{"easy"}, LevelCodeEasy, false},
		{"single medium", []string{"medium"}, LevelCodeMedium, false},
		{"single hard", []string{"hard"}, LevelCodeHard, false},
		{"easy+medium", []string{"easy", "medium"}, LevelCodeEasyMedium, false},
		{"medium+hard", []string{"hard", "medium"}, LevelCodeMediumHard, false},
		{"all three", []string{"easy", "medium", "hard"}, LevelCodeEasyMediumHard, false},
		{"case and spacing", []string{" Easy ", "MEDIUM"}, LevelCodeEasyMedium, false},
		{"duplicates collapse", []string{"easy", "easy"}, LevelCodeEasy, false},
		{"easy+hard has no code", []string{"easy", "hard"}, 0, true},
		{"unknown tag", []string{"pro"}, 0, true},
		{"empty", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeLevels(tt.levels)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodeLevels(%v) error = %v, wantErr %v", tt.levels, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("EncodeLevels(%v) = %d, want %d", tt.levels, got, tt.want)
			}
		})
	}
}

func TestDecodeLevels(t *testing.T) {
	if got := DecodeLevels(LevelCodeMediumHard); !reflect.DeepEqual(got, []string{"medium", "hard"}) {
		t.Errorf("DecodeLevels(medium_hard) = %v", got)
	}
	if got := DecodeLevels(99); got != nil {
		t.Errorf("DecodeLevels(99) = %v, want nil", got)
	}
}

func TestLevelCodeContains(t *testing.T) {
	// A composite requirement admits each member level and nothing else.
	if !LevelCodeContains(LevelCodeEasyMedium, "easy") || !LevelCodeContains(LevelCodeEasyMedium, "medium") {
		t.Error("easy_medium should contain easy and medium")
	}
	if LevelCodeContains(LevelCodeEasyMedium, "hard") {
		t.Error("easy_medium should not contain hard")
	}
	// Regression for the old ordinal comparison: medium (code 3) is not
	// admitted by easy_medium (code 2) even though 3 > 2 ordering says no
	// and easy (code 1) <= 2 says yes only by accident.
	if LevelCodeContains(LevelCodeHard, "easy") {
		t.Error("hard should not contain easy")
	}
	if !LevelCodeContains(LevelCodeEasyMediumHard, "hard") {
		t.Error("easy_medium_hard should contain hard")
	}
}

func TestWeekday(t *testing.T) {
	// 2023-11-13 is a Monday, 2023-11-19 a Sunday.
	mon := NormalizeDate(mustDate(t, "2023-11-13"))
	sun := NormalizeDate(mustDate(t, "2023-11-19"))
	if got := Weekday(mon); got != 1 {
		t.Errorf("Weekday(monday) = %d, want 1", got)
	}
	if got := Weekday(sun); got != 7 {
		t.Errorf("Weekday(sunday) = %d, want 7", got)
	}
}
