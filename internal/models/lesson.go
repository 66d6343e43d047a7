package models

import "time"

// TrackLength is the number of daily lessons in the fixed logistics track.
const TrackLength = 7

// UnlockHour is the local hour at which a timed lesson unlock fires.
const UnlockHour = 8

// Lesson is one day of the fixed seven-day training track.
type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModuleID    string    `gorm:"size:64;index" json:"module_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:lesson_order;index;not null" json:"order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	VideoURL    string    `gorm:"size:512" json:"video_url"`
	MaterialURL string    `gorm:"size:512" json:"material_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudentProgress tracks one student's state for one lesson. At most one row
// exists per (student, lesson) pair; the unique index backs the first-access
// race handling.
type StudentProgress struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	StudentID        uint       `gorm:"not null;uniqueIndex:idx_student_lesson" json:"student_id"`
	LessonID         uint       `gorm:"not null;uniqueIndex:idx_student_lesson" json:"lesson_id"`
	ModuleID         string     `gorm:"size:64" json:"module_id"`
	Completed        bool       `gorm:"default:false" json:"completed"`
	CompletedAt      *time.Time `json:"completed_at"`
	LastAccessed     *time.Time `json:"last_accessed"`
	LessonUnlockTime *time.Time `json:"lesson_unlock_time"`
	TimeSpent        int        `gorm:"default:0" json:"time_spent"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsUnlocked reports whether the lesson is accessible at the given instant.
// A set LastAccessed wins unconditionally; otherwise the timed unlock applies.
func (p StudentProgress) IsUnlocked(now time.Time) bool {
	if p.LastAccessed != nil {
		return true
	}
	if p.LessonUnlockTime != nil {
		return !now.Before(*p.LessonUnlockTime)
	}
	return false
}

// NextUnlockTime returns the timed-unlock threshold relative to now: the next
// calendar day at 08:00 local time.
func NextUnlockTime(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, UnlockHour, 0, 0, 0, now.Location())
}
