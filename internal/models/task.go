package models

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// Task statuses form a closed set; anything else is rejected at the
// service layer.
const (
	StatusTodo   = "todo"
	StatusReview = "review"
	StatusDone   = "done"
)

const (
	TitleMaxLen     = 200
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

// ArchiveMonthUnknown is the grouping key for archived rows that never
// received a month key.
const ArchiveMonthUnknown = "unknown"

type Task struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Owner        string    `json:"owner" gorm:"index;not null"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description"`
	Status       string    `json:"status" gorm:"not null;default:'todo'"`
	Priority     int       `json:"priority" gorm:"not null;default:3"`
	IsArchived   bool      `json:"is_archived" gorm:"not null;default:false;index"`
	ArchiveMonth *string   `json:"archive_month"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusReview, StatusDone:
		return true
	}
	return false
}

// ClampPriority forces p into [PriorityMin, PriorityMax].
func ClampPriority(p int) int {
	if p < PriorityMin {
		return PriorityMin
	}
	if p > PriorityMax {
		return PriorityMax
	}
	return p
}

// TruncateTitle cuts s to TitleMaxLen characters. Truncation, not
// rejection: an over-long title is stored at exactly 200 characters.
func TruncateTitle(s string) string {
	r := []rune(s)
	if len(r) > TitleMaxLen {
		return string(r[:TitleMaxLen])
	}
	return s
}

// NormalizeTitle is the creation-path variant: trim first, then truncate.
// An empty post-trim title is stored as-is; blocking it is the UI's call.
func NormalizeTitle(s string) string {
	return TruncateTitle(strings.TrimSpace(s))
}

// MonthKey renders t's calendar month as a YYYY-MM archive bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// PrevMonthKey is the archive month a rollover sweep running at instant
// now assigns: the month before now's month.
func PrevMonthKey(now time.Time) string {
	return MonthKey(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location()))
}

// StartOfMonth returns the first instant of now's calendar month, in
// now's location.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
