package model

import (
	"encoding/json"
	"time"
)

// ResultStatus tracks an uploaded result sheet through processing.
type ResultStatus string

const (
	ResultStatusPending    ResultStatus = "pending"
	ResultStatusProcessing ResultStatus = "processing"
	ResultStatusCompleted  ResultStatus = "completed"
	ResultStatusFailed     ResultStatus = "failed"
)

// Uploader identifies the staff member who submitted a result sheet.
type Uploader struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// ResultStatistics is the aggregate summary computed for one upload.
type ResultStatistics struct {
	TotalStudents  int     `json:"total_students"`
	PassedStudents int     `json:"passed_students"`
	FailedStudents int     `json:"failed_students"`
	AverageGrade   float64 `json:"average_grade"`
	HighestGrade   float64 `json:"highest_grade"`
	LowestGrade    float64 `json:"lowest_grade"`
}

// ResultRecord is one exam-result upload as served by the records API.
// Records are never mutated here beyond the soft-delete flag; deletion is
// a server-side concern.
type ResultRecord struct {
	ID             string           `json:"id"`
	Date           time.Time        `json:"date"`
	DegreeProgram  string           `json:"degree_program"`
	Faculty        string           `json:"faculty"`
	Department     string           `json:"department"`
	SubjectCode    string           `json:"subject_code"`
	SubjectTitle   string           `json:"subject_title"`
	Level          int              `json:"level"`
	SemesterNumber int              `json:"semester_number"`
	UploadedBy     Uploader         `json:"uploaded_by"`
	Statistics     ResultStatistics `json:"statistics"`
	Status         ResultStatus     `json:"status"`
	IsDeleted      bool             `json:"is_deleted"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
	DeletedBy      string           `json:"deleted_by,omitempty"`
}

// ResultSemesterGroup is a derived view of the uploads in one semester of a
// level, as browsed by exam-division staff. Recomputed from the flat record
// list; no independent lifecycle.
type ResultSemesterGroup struct {
	Number            int            `json:"number"`
	Title             string         `json:"title"`
	Records           []ResultRecord `json:"records"`
	CompletionPercent int            `json:"completion_percent"`
}

// ResultLevelGroup collects the upload semesters of one study level.
type ResultLevelGroup struct {
	Level     int                   `json:"level"`
	Title     string                `json:"title"`
	Semesters []ResultSemesterGroup `json:"semesters"`
}

// UnmarshalJSON decodes the record with lenient timestamps: a malformed
// date or deleted_at zeroes that field rather than failing the whole
// result payload.
func (r *ResultRecord) UnmarshalJSON(data []byte) error {
	type plain ResultRecord
	aux := struct {
		*plain
		Date      json.RawMessage `json:"date"`
		DeletedAt json.RawMessage `json:"deleted_at"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Date = lenientTime(aux.Date, "result.date")
	if t := lenientTime(aux.DeletedAt, "result.deleted_at"); !t.IsZero() {
		r.DeletedAt = &t
	} else {
		r.DeletedAt = nil
	}
	return nil
}
