package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewsRecordLenientTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantZero bool
	}{
		{name: "well formed", payload: `{"id":"n1","title":"T","created_at":"2026-03-01T10:00:00Z"}`, wantZero: false},
		{name: "wrong format", payload: `{"id":"n1","title":"T","created_at":"03/01/2026 10:00"}`, wantZero: true},
		{name: "non-string", payload: `{"id":"n1","title":"T","created_at":1772359200}`, wantZero: true},
		{name: "null", payload: `{"id":"n1","title":"T","created_at":null}`, wantZero: true},
		{name: "missing", payload: `{"id":"n1","title":"T"}`, wantZero: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n NewsRecord
			if err := json.Unmarshal([]byte(tt.payload), &n); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if n.ID != "n1" || n.Title != "T" {
				t.Errorf("other fields lost: %+v", n)
			}
			if n.CreatedAt.IsZero() != tt.wantZero {
				t.Errorf("CreatedAt = %v, wantZero=%v", n.CreatedAt, tt.wantZero)
			}
		})
	}
}

func TestResultRecordLenientTimestamps(t *testing.T) {
	payload := `{"id":"r1","subject_code":"CS101","date":"not a date","deleted_at":"also bad","is_deleted":true}`

	var r ResultRecord
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if r.ID != "r1" || r.SubjectCode != "CS101" || !r.IsDeleted {
		t.Errorf("other fields lost: %+v", r)
	}
	if !r.Date.IsZero() {
		t.Errorf("Date = %v, want zero", r.Date)
	}
	if r.DeletedAt != nil {
		t.Errorf("DeletedAt = %v, want nil", r.DeletedAt)
	}

	good := `{"id":"r2","date":"2026-03-01T10:00:00Z","deleted_at":"2026-03-02T10:00:00Z"}`
	if err := json.Unmarshal([]byte(good), &r); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", r.Date, want)
	}
	if r.DeletedAt == nil || !r.DeletedAt.Equal(want.Add(24*time.Hour)) {
		t.Errorf("DeletedAt = %v", r.DeletedAt)
	}
}
