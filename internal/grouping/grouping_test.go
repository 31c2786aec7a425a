package grouping

import (
	"testing"
	"time"

	"github.com/resulta/resulta-gateway/internal/model"
)

func subject(level, sem int, status model.SubjectStatus) model.Subject {
	return model.Subject{
		Code:           "CS101",
		Title:          "Intro",
		CreditCount:    3,
		Status:         status,
		UpdateDate:     time.Now(),
		Level:          level,
		SemesterNumber: sem,
	}
}

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []model.SubjectStatus
		wantPercent  int
		wantEligible bool
	}{
		{
			name:         "half completed",
			statuses:     []model.SubjectStatus{model.SubjectStatusCompleted, model.SubjectStatusCompleted, model.SubjectStatusPending, model.SubjectStatusPending},
			wantPercent:  50,
			wantEligible: true,
		},
		{
			name:         "quarter completed",
			statuses:     []model.SubjectStatus{model.SubjectStatusCompleted, model.SubjectStatusPending, model.SubjectStatusPending, model.SubjectStatusPending},
			wantPercent:  25,
			wantEligible: false,
		},
		{
			name:         "all completed",
			statuses:     []model.SubjectStatus{model.SubjectStatusCompleted, model.SubjectStatusCompleted},
			wantPercent:  100,
			wantEligible: true,
		},
		{
			name:         "rounding two thirds",
			statuses:     []model.SubjectStatus{model.SubjectStatusCompleted, model.SubjectStatusCompleted, model.SubjectStatusPending},
			wantPercent:  67,
			wantEligible: true,
		},
		{
			name:         "empty semester",
			statuses:     nil,
			wantPercent:  0,
			wantEligible: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subjects := make([]model.Subject, 0, len(tt.statuses))
			for _, st := range tt.statuses {
				subjects = append(subjects, subject(200, 3, st))
			}
			if got := CompletionPercent(subjects); got != tt.wantPercent {
				t.Errorf("CompletionPercent() = %d, want %d", got, tt.wantPercent)
			}
			if got := DownloadEligible(subjects); got != tt.wantEligible {
				t.Errorf("DownloadEligible() = %v, want %v", got, tt.wantEligible)
			}
		})
	}
}

func TestGroupScenario(t *testing.T) {
	subjects := []model.Subject{
		subject(200, 3, model.SubjectStatusPending),
		subject(200, 3, model.SubjectStatusCompleted),
	}

	groups := Group(subjects)
	if len(groups) != 1 {
		t.Fatalf("Group() returned %d level groups, want 1", len(groups))
	}
	lvl := groups[0]
	if lvl.Level != 200 || lvl.Title != "Level 200" {
		t.Errorf("level group = %d %q, want 200 %q", lvl.Level, lvl.Title, "Level 200")
	}
	if len(lvl.Semesters) != 1 {
		t.Fatalf("level has %d semesters, want 1", len(lvl.Semesters))
	}
	sem := lvl.Semesters[0]
	if sem.Number != 3 {
		t.Errorf("semester number = %d, want 3", sem.Number)
	}
	if sem.CompletionPercent != 50 {
		t.Errorf("completion = %d, want 50", sem.CompletionPercent)
	}
	if !sem.DownloadEligible {
		t.Error("semester should be download eligible at 50%")
	}
}

func TestGroupOrdering(t *testing.T) {
	subjects := []model.Subject{
		subject(400, 7, model.SubjectStatusCompleted),
		subject(100, 2, model.SubjectStatusPending),
		subject(100, 1, model.SubjectStatusPending),
		subject(200, 4, model.SubjectStatusCompleted),
	}

	groups := Group(subjects)
	if len(groups) != 3 {
		t.Fatalf("got %d level groups, want 3", len(groups))
	}
	wantLevels := []int{100, 200, 400}
	for i, want := range wantLevels {
		if groups[i].Level != want {
			t.Errorf("groups[%d].Level = %d, want %d", i, groups[i].Level, want)
		}
	}
	if got := groups[0].Semesters; len(got) != 2 || got[0].Number != 1 || got[1].Number != 2 {
		t.Errorf("level 100 semesters not ascending: %+v", got)
	}
}

func TestGroupUnclassified(t *testing.T) {
	// One subject with a missing level, one with a semester out of range.
	subjects := []model.Subject{
		subject(200, 3, model.SubjectStatusCompleted),
		subject(0, 3, model.SubjectStatusPending),
		subject(200, 99, model.SubjectStatusPending),
	}

	groups := Group(subjects)
	if len(groups) != 2 {
		t.Fatalf("got %d level groups, want 2", len(groups))
	}
	last := groups[len(groups)-1]
	if last.Level != UnclassifiedLevel || last.Title != "Unclassified" {
		t.Fatalf("trailing group = %d %q, want unclassified bucket", last.Level, last.Title)
	}
	total := 0
	for _, sem := range last.Semesters {
		total += len(sem.Subjects)
	}
	if total != 2 {
		t.Errorf("unclassified bucket holds %d subjects, want 2", total)
	}
}

func resultRecord(level, sem int, status model.ResultStatus) model.ResultRecord {
	return model.ResultRecord{
		ID:             "r",
		SubjectCode:    "CS101",
		Level:          level,
		SemesterNumber: sem,
		Status:         status,
	}
}

func TestGroupResults(t *testing.T) {
	records := []model.ResultRecord{
		resultRecord(200, 3, model.ResultStatusCompleted),
		resultRecord(200, 3, model.ResultStatusProcessing),
		resultRecord(100, 1, model.ResultStatusCompleted),
		resultRecord(0, 5, model.ResultStatusPending), // missing level
	}

	groups := GroupResults(records)
	if len(groups) != 3 {
		t.Fatalf("got %d level groups, want 3", len(groups))
	}
	if groups[0].Level != 100 || groups[1].Level != 200 {
		t.Errorf("levels not ascending: %d, %d", groups[0].Level, groups[1].Level)
	}
	if last := groups[2]; last.Level != UnclassifiedLevel || last.Title != "Unclassified" {
		t.Errorf("trailing group = %d %q, want unclassified bucket", last.Level, last.Title)
	}

	sem := groups[1].Semesters[0]
	if sem.Number != 3 || len(sem.Records) != 2 {
		t.Fatalf("level 200 semester = %+v, want semester 3 with 2 records", sem)
	}
	if sem.CompletionPercent != 50 {
		t.Errorf("completion = %d, want 50", sem.CompletionPercent)
	}
}

func TestFindSemester(t *testing.T) {
	groups := Group([]model.Subject{
		subject(100, 1, model.SubjectStatusCompleted),
		subject(200, 3, model.SubjectStatusPending),
	})

	if got := FindSemester(groups, 200, 3); got == nil || got.Number != 3 {
		t.Errorf("FindSemester(200,3) = %+v, want semester 3", got)
	}
	if got := FindSemester(groups, 300, 1); got != nil {
		t.Errorf("FindSemester(300,1) = %+v, want nil", got)
	}
}

func TestMemoReusesSameVersion(t *testing.T) {
	memo := NewMemo()
	subjects := []model.Subject{subject(100, 1, model.SubjectStatusCompleted)}

	first := memo.Group("v1", subjects)
	second := memo.Group("v1", nil) // same version: input ignored, cache served
	if len(second) != len(first) || len(second) != 1 {
		t.Fatalf("memo did not serve cached grouping: %+v", second)
	}

	third := memo.Group("v2", nil)
	if len(third) != 0 {
		t.Errorf("new version should recompute, got %+v", third)
	}

	memo.Invalidate()
	fourth := memo.Group("v2", subjects)
	if len(fourth) != 1 {
		t.Errorf("after invalidate, expected recompute, got %+v", fourth)
	}
}
