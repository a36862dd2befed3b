package models

import (
	"testing"
)

func TestLevelNameToID(t *testing.T) {
	tests := []struct {
		name      string
		levelName string
		expected  int16
	}{
		{"public", "public", LevelPublic},
		{"member", "member", LevelMember},
		{"moderator", "moderator", LevelModerator},
		{"admin", "admin", LevelAdmin},
		{"owner", "owner", LevelOwner},
		{"unknown", "unknown", LevelPublic}, // Default
		{"empty", "", LevelPublic},          // Default
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevelNameToID(tt.levelName)
			if result != tt.expected {
				t.Errorf("LevelNameToID(%q) = %v, want %v", tt.levelName, result, tt.expected)
			}
		})
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		name     string
		level    int16
		expected string
	}{
		{"public", LevelPublic, "public"},
		{"member", LevelMember, "member"},
		{"moderator", LevelModerator, "moderator"},
		{"admin", LevelAdmin, "admin"},
		{"owner", LevelOwner, "owner"},
		{"unknown rank", 99, "public"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevelName(tt.level)
			if result != tt.expected {
				t.Errorf("LevelName(%d) = %v, want %v", tt.level, result, tt.expected)
			}
		})
	}
}

func TestValidTargetType(t *testing.T) {
	tests := []struct {
		name     string
		target   TargetType
		expected bool
	}{
		{"user", TargetUser, true},
		{"group", TargetGroup, true},
		{"page", TargetPage, true},
		{"unknown", TargetType("channel"), false},
		{"empty", TargetType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTargetType(tt.target); got != tt.expected {
				t.Errorf("ValidTargetType(%q) = %v, want %v", tt.target, got, tt.expected)
			}
		})
	}
}
