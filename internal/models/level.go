package models

import (
	"fmt"
	"sort"
	"strings"
)

// Skill levels a team may require. The persisted column keeps the historical
// six-valued code; all matching is done on the decoded set, never by
// comparing codes numerically.
const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
)

const (
	LevelCodeEasy           = 1
	LevelCodeEasyMedium     = 2
	LevelCodeMedium         = 3
	LevelCodeEasyMediumHard = 4
	LevelCodeMediumHard     = 5
	LevelCodeHard           = 6
)

var levelCodeSets = map[int][]string{
	LevelCodeEasy:           {LevelEasy},
	LevelCodeEasyMedium:     {LevelEasy, LevelMedium},
	LevelCodeMedium:         {LevelMedium},
	LevelCodeEasyMediumHard: {LevelEasy, LevelMedium, LevelHard},
	LevelCodeMediumHard:     {LevelMedium, LevelHard},
	LevelCodeHard:           {LevelHard},
}

// EncodeLevels converts a set of level tags into the stored code.
// The schema has no code for {easy, hard} without medium, so that
// combination (and anything outside the closed set) is rejected.
func EncodeLevels(levels []string) (int, error) {
	if len(levels) == 0 {
		return 0, fmt.Errorf("level requirement must not be empty")
	}
	want := make(map[string]bool, len(levels))
	for _, lv := range levels {
		lv = strings.ToLower(strings.TrimSpace(lv))
		switch lv {
		case LevelEasy, LevelMedium, LevelHard:
			want[lv] = true
		default:
			return 0, fmt.Errorf("invalid level requirement %q: only easy, medium, hard are valid values", lv)
		}
	}
	for code, set := range levelCodeSets {
		if len(set) != len(want) {
			continue
		}
		match := true
		for _, lv := range set {
			if !want[lv] {
				match = false
				break
			}
		}
		if match {
			return code, nil
		}
	}
	return 0, fmt.Errorf("level combination %v has no encoding", sortedLevels(want))
}

// DecodeLevels returns the level tags encoded by code, ordered
// easy, medium, hard.
func DecodeLevels(code int) []string {
	set, ok := levelCodeSets[code]
	if !ok {
		return nil
	}
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// LevelCodeContains reports whether the single level tag is a member of the
// encoded set. Set membership is the only containment rule; numeric ordering
// of codes is meaningless.
func LevelCodeContains(code int, level string) bool {
	level = strings.ToLower(strings.TrimSpace(level))
	for _, lv := range levelCodeSets[code] {
		if lv == level {
			return true
		}
	}
	return false
}

func sortedLevels(set map[string]bool) []string {
	rank := map[string]int{LevelEasy: 0, LevelMedium: 1, LevelHard: 2}
	out := make([]string, 0, len(set))
	for lv := range set {
		out = append(out, lv)
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}
