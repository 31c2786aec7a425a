package grouping

import (
	"fmt"
	"sort"

	"github.com/resulta/resulta-gateway/internal/model"
)

// EligibilityThreshold is the completion percentage a semester must reach
// before its results may be exported. Hard business rule, no override.
const EligibilityThreshold = 50

// UnclassifiedLevel is the bucket for subjects whose level or semester
// number is malformed. Such subjects are surfaced, never dropped.
const UnclassifiedLevel = -1

const maxSemester = 8

// Group partitions a flat subject list into a Level -> Semester hierarchy.
// Levels ascend numerically; semesters ascend within each level. Subjects
// with a malformed level or semester land in a trailing "Unclassified"
// group instead of causing an error.
func Group(subjects []model.Subject) []model.LevelGroup {
	byLevel, levels := partition(subjects, func(s model.Subject) (int, int) {
		return s.Level, s.SemesterNumber
	})

	groups := make([]model.LevelGroup, 0, len(levels))
	for _, lvl := range levels {
		groups = append(groups, buildLevelGroup(lvl, byLevel[lvl]))
	}
	return groups
}

// GroupResults partitions uploaded result records into the same hierarchy,
// the exam division's per-level browse of uploads. Completion here is the
// share of uploads whose processing finished.
func GroupResults(records []model.ResultRecord) []model.ResultLevelGroup {
	byLevel, levels := partition(records, func(r model.ResultRecord) (int, int) {
		return r.Level, r.SemesterNumber
	})

	groups := make([]model.ResultLevelGroup, 0, len(levels))
	for _, lvl := range levels {
		semesters := byLevel[lvl]
		nums := make([]int, 0, len(semesters))
		for n := range semesters {
			nums = append(nums, n)
		}
		sort.Ints(nums)

		group := model.ResultLevelGroup{Level: lvl, Title: levelTitle(lvl)}
		for _, n := range nums {
			recs := semesters[n]
			group.Semesters = append(group.Semesters, model.ResultSemesterGroup{
				Number:            n,
				Title:             semesterTitle(lvl, n),
				Records:           recs,
				CompletionPercent: recordCompletionPercent(recs),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// partition buckets items by (level, semester), invalid coordinates going to
// the unclassified bucket, and returns the levels in display order with
// unclassified last.
func partition[T any](items []T, key func(T) (int, int)) (map[int]map[int][]T, []int) {
	byLevel := make(map[int]map[int][]T)

	for _, item := range items {
		level, sem := key(item)
		if !validLevel(level) || !validSemester(sem) {
			level, sem = UnclassifiedLevel, 0
		}
		if byLevel[level] == nil {
			byLevel[level] = make(map[int][]T)
		}
		byLevel[level][sem] = append(byLevel[level][sem], item)
	}

	levels := make([]int, 0, len(byLevel))
	for lvl := range byLevel {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)

	// Unclassified sorts first as -1; move it to the tail.
	if len(levels) > 0 && levels[0] == UnclassifiedLevel {
		levels = append(levels[1:], UnclassifiedLevel)
	}
	return byLevel, levels
}

func buildLevelGroup(level int, semesters map[int][]model.Subject) model.LevelGroup {
	nums := make([]int, 0, len(semesters))
	for n := range semesters {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	group := model.LevelGroup{
		Level: level,
		Title: levelTitle(level),
	}
	for _, n := range nums {
		subjects := semesters[n]
		percent := CompletionPercent(subjects)
		group.Semesters = append(group.Semesters, model.SemesterGroup{
			Number:            n,
			Title:             semesterTitle(level, n),
			Subjects:          subjects,
			CompletionPercent: percent,
			DownloadEligible:  DownloadEligible(subjects),
		})
	}
	return group
}

// CompletionPercent returns the rounded percentage of completed subjects.
// An empty subject list yields 0 rather than a division by zero; callers
// treating eligibility must use DownloadEligible, which excludes empty
// semesters outright.
func CompletionPercent(subjects []model.Subject) int {
	if len(subjects) == 0 {
		return 0
	}
	completed := 0
	for _, s := range subjects {
		if s.Status == model.SubjectStatusCompleted {
			completed++
		}
	}
	return int(float64(completed)/float64(len(subjects))*100 + 0.5)
}

func recordCompletionPercent(records []model.ResultRecord) int {
	if len(records) == 0 {
		return 0
	}
	completed := 0
	for _, r := range records {
		if r.Status == model.ResultStatusCompleted {
			completed++
		}
	}
	return int(float64(completed)/float64(len(records))*100 + 0.5)
}

// DownloadEligible reports whether a semester's results may be exported.
// Empty semesters are never eligible.
func DownloadEligible(subjects []model.Subject) bool {
	if len(subjects) == 0 {
		return false
	}
	return CompletionPercent(subjects) >= EligibilityThreshold
}

// FindSemester locates a single semester group, used when a screen
// navigates directly to one subject and needs its branch expanded.
// Returns nil when the target does not exist.
func FindSemester(groups []model.LevelGroup, level, semester int) *model.SemesterGroup {
	for i := range groups {
		if groups[i].Level != level {
			continue
		}
		for j := range groups[i].Semesters {
			if groups[i].Semesters[j].Number == semester {
				return &groups[i].Semesters[j]
			}
		}
	}
	return nil
}

func validLevel(level int) bool {
	return level > 0
}

func validSemester(sem int) bool {
	return sem >= 1 && sem <= maxSemester
}

func levelTitle(level int) string {
	if level == UnclassifiedLevel {
		return "Unclassified"
	}
	return fmt.Sprintf("Level %d", level)
}

func semesterTitle(level, sem int) string {
	if level == UnclassifiedLevel {
		return "Unclassified"
	}
	return fmt.Sprintf("Semester %d", sem)
}
