package dto

import "time"

// StudentStatsResponse aggregates a student's track progress.
type StudentStatsResponse struct {
	StudentID        uint       `json:"student_id"`
	LessonsUnlocked  int        `json:"lessons_unlocked"`
	LessonsCompleted int        `json:"lessons_completed"`
	TotalTimeSpent   int        `json:"total_time_spent"`
	Submissions      int        `json:"submissions"`
	GradedCount      int        `json:"graded_count"`
	AttemptsUsed     int        `json:"attempts_used"`
	HasCertificate   bool       `json:"has_certificate"`
	CertificateSince *time.Time `json:"certificate_since,omitempty"`
	GeneratedAt      time.Time  `json:"generated_at"`
}
