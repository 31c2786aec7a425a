package model

import "time"

// SubjectStatus marks whether a subject's grade has been published.
type SubjectStatus string

const (
	SubjectStatusCompleted SubjectStatus = "completed"
	SubjectStatusPending   SubjectStatus = "pending"
)

// Subject is one course entry inside a student's semester view.
// Grade is non-empty iff Status is completed.
type Subject struct {
	Code           string        `json:"code"`
	Title          string        `json:"title"`
	CreditCount    int           `json:"credit_count"`
	Grade          string        `json:"grade,omitempty"`
	Status         SubjectStatus `json:"status"`
	UpdateDate     time.Time     `json:"update_date"`
	Level          int           `json:"level"`
	SemesterNumber int           `json:"semester_number"`
}

// SemesterGroup is a derived view of all subjects in one semester of a level.
// It is recomputed from the flat subject list and has no independent lifecycle.
type SemesterGroup struct {
	Number            int       `json:"number"`
	Title             string    `json:"title"`
	Subjects          []Subject `json:"subjects"`
	CompletionPercent int       `json:"completion_percent"`
	DownloadEligible  bool      `json:"download_eligible"`
}

// LevelGroup collects the semesters of one study level, ordered ascending.
type LevelGroup struct {
	Level     int             `json:"level"`
	Title     string          `json:"title"`
	Semesters []SemesterGroup `json:"semesters"`
}
