package models_test

import (
	"strings"
	"testing"
	"time"

	"taskboard/internal/models"
)

func TestClampPriority(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"below minimum", 0, 1},
		{"negative", -7, 1},
		{"at minimum", 1, 1},
		{"middle", 3, 3},
		{"at maximum", 5, 5},
		{"above maximum", 6, 5},
		{"far above maximum", 100, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.ClampPriority(tt.input); got != tt.expected {
				t.Errorf("ClampPriority(%d) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := models.TruncateTitle(long)
	if len([]rune(got)) != models.TitleMaxLen {
		t.Errorf("Expected truncated length %d, got %d", models.TitleMaxLen, len([]rune(got)))
	}

	short := "Buy milk"
	if models.TruncateTitle(short) != short {
		t.Errorf("Short title should pass through unchanged")
	}

	exact := strings.Repeat("y", models.TitleMaxLen)
	if models.TruncateTitle(exact) != exact {
		t.Errorf("Title at exactly the limit should pass through unchanged")
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := models.NormalizeTitle("  Buy milk  "); got != "Buy milk" {
		t.Errorf("Expected trimmed title, got %q", got)
	}

	if got := models.NormalizeTitle("   "); got != "" {
		t.Errorf("Whitespace-only title should normalize to empty, got %q", got)
	}

	padded := "  " + strings.Repeat("z", 300)
	got := models.NormalizeTitle(padded)
	if len([]rune(got)) != models.TitleMaxLen {
		t.Errorf("Expected length %d after trim+truncate, got %d", models.TitleMaxLen, len([]rune(got)))
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{models.StatusTodo, models.StatusReview, models.StatusDone} {
		if !models.ValidStatus(s) {
			t.Errorf("Expected %q to be a valid status", s)
		}
	}

	for _, s := range []string{"", "pending", "DONE", "archived", "in-progress"} {
		if models.ValidStatus(s) {
			t.Errorf("Expected %q to be rejected", s)
		}
	}
}

func TestPrevMonthKey(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected string
	}{
		{"mid month", time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), "2024-05"},
		{"first of month", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2024-05"},
		{"january wraps year", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), "2023-12"},
		{"december", time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.PrevMonthKey(tt.now); got != tt.expected {
				t.Errorf("PrevMonthKey(%v) = %q, want %q", tt.now, got, tt.expected)
			}
		})
	}
}

func TestStartOfMonth(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := models.StartOfMonth(now); !got.Equal(want) {
		t.Errorf("StartOfMonth(%v) = %v, want %v", now, got, want)
	}
}
