package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/export"
	"github.com/resulta/resulta-gateway/internal/filter"
	"github.com/resulta/resulta-gateway/internal/grouping"
	"github.com/resulta/resulta-gateway/internal/model"
	"github.com/resulta/resulta-gateway/internal/upstream"
)

// ErrSemesterNotFound is returned when an export targets a level/semester
// that does not exist in the grouped view.
var ErrSemesterNotFound = errors.New("semester not found")

// ExportFormat selects the download serialization.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ResultSchema declares the fields the result listing exposes to the filter
// engine. Screens send facet names; only these resolve to record fields.
var ResultSchema = filter.Schema{
	SearchFields: []string{
		"subject_code", "subject_title", "degree_program",
		"uploaded_by.name", "uploaded_by.id",
	},
	Facets: map[string]string{
		"faculty":    "faculty",
		"department": "department",
		"degree":     "degree_program",
		"status":     "status",
		"level":      "level",
		"uploader":   "uploaded_by.id",
	},
	UserFacet: "uploader",
}

// ResultService builds the derived result views: the flat filtered listing,
// the level/semester hierarchy, and semester exports. Upstream fetches are
// cached per user in Redis for a short TTL; manual refreshes are debounced
// so rapid triggers collapse into one invalidation.
type ResultService struct {
	client   *upstream.Client
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger

	memo *grouping.Memo

	refreshMu sync.Mutex
	refresh   map[string]*filter.Debouncer
	refreshWn time.Duration
}

// NewResultService creates a ResultService.
func NewResultService(client *upstream.Client, rdb *redis.Client, cacheTTL, refreshWindow time.Duration, log zerolog.Logger) *ResultService {
	return &ResultService{
		client:    client,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		log:       log.With().Str("component", "result_service").Logger(),
		memo:      grouping.NewMemo(),
		refresh:   make(map[string]*filter.Debouncer),
		refreshWn: refreshWindow,
	}
}

// ListResults returns one page of the filtered, sorted result listing.
// Soft-deleted records are excluded unless includeDeleted is set (the
// exam-division recycle view).
func (s *ResultService) ListResults(ctx context.Context, token, userKey string, spec filter.Spec, includeDeleted bool) (filter.Result[model.ResultRecord], error) {
	records, err := s.fetchResults(ctx, token, userKey)
	if err != nil {
		return filter.Result[model.ResultRecord]{}, err
	}

	records = visibleRecords(records, includeDeleted)

	spec = ResultSchema.ResolveMe(spec, userKey)
	return filter.Apply(records, ResultSchema, spec), nil
}

// GroupedRecords returns the per-level/semester hierarchy of uploaded result
// records, the exam division's browse view.
func (s *ResultService) GroupedRecords(ctx context.Context, token, userKey string, includeDeleted bool) ([]model.ResultLevelGroup, error) {
	records, err := s.fetchResults(ctx, token, userKey)
	if err != nil {
		return nil, err
	}
	return grouping.GroupResults(visibleRecords(records, includeDeleted)), nil
}

func visibleRecords(records []model.ResultRecord, includeDeleted bool) []model.ResultRecord {
	if includeDeleted {
		return records
	}
	visible := records[:0:0]
	for _, r := range records {
		if !r.IsDeleted {
			visible = append(visible, r)
		}
	}
	return visible
}

// GroupedSubjects returns the level -> semester hierarchy for the caller's
// subject list, memoized on the cache version so unchanged data is not
// regrouped on every request.
func (s *ResultService) GroupedSubjects(ctx context.Context, token, userKey string) ([]model.LevelGroup, error) {
	subjects, version, err := s.fetchSubjects(ctx, token, userKey)
	if err != nil {
		return nil, err
	}
	return s.memo.Group(version, subjects), nil
}

// FindSemester locates one semester group inside an already-built hierarchy.
func (s *ResultService) FindSemester(groups []model.LevelGroup, level, semester int) *model.SemesterGroup {
	return grouping.FindSemester(groups, level, semester)
}

// ExportSemester writes one semester's results in the requested format.
// Ineligible semesters return export.ErrNotEligible untouched so the
// handler can map it to the blocked-action error.
func (s *ResultService) ExportSemester(ctx context.Context, token, userKey string, level, semester int, format ExportFormat, w io.Writer) error {
	groups, err := s.GroupedSubjects(ctx, token, userKey)
	if err != nil {
		return err
	}
	sem := grouping.FindSemester(groups, level, semester)
	if sem == nil {
		return ErrSemesterNotFound
	}

	switch format {
	case FormatXLSX:
		return export.SemesterXLSX(w, sem)
	default:
		return export.SemesterCSV(w, sem)
	}
}

// RequestRefresh schedules a cache invalidation for the user after the
// refresh window. Repeated triggers inside the window collapse into one.
func (s *ResultService) RequestRefresh(userKey string) {
	s.refreshMu.Lock()
	d, ok := s.refresh[userKey]
	if !ok {
		key := userKey
		d = filter.NewDebouncer(s.refreshWn, func(string) {
			s.invalidate(key)
		})
		s.refresh[userKey] = d
	}
	s.refreshMu.Unlock()

	d.Update(userKey)
}

// Shutdown flushes pending refreshes.
func (s *ResultService) Shutdown() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	for _, d := range s.refresh {
		d.Flush()
	}
}

func (s *ResultService) invalidate(userKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.rdb.Del(ctx, s.resultsKey(userKey), s.subjectsKey(userKey)).Err(); err != nil {
		s.log.Warn().Err(err).Str("user", userKey).Msg("cache invalidation failed")
	}
	s.memo.Invalidate()
	s.log.Debug().Str("user", userKey).Msg("record cache invalidated")
}

// ────────────────────────────────────────────────────────────────────────────
// Cached upstream fetches
// ────────────────────────────────────────────────────────────────────────────

type cachedRecords[T any] struct {
	FetchedAt time.Time `json:"fetched_at"`
	Records   []T       `json:"records"`
}

func (s *ResultService) resultsKey(userKey string) string {
	return "cache:results:" + userKey
}

func (s *ResultService) subjectsKey(userKey string) string {
	return "cache:subjects:" + userKey
}

func (s *ResultService) fetchResults(ctx context.Context, token, userKey string) ([]model.ResultRecord, error) {
	key := s.resultsKey(userKey)
	if cached, ok := cacheGet[model.ResultRecord](ctx, s.rdb, key, s.log); ok {
		return cached.Records, nil
	}

	records, err := s.client.FetchResults(ctx, token, nil)
	if err != nil {
		return nil, err
	}
	cacheSet(ctx, s.rdb, key, cachedRecords[model.ResultRecord]{FetchedAt: time.Now(), Records: records}, s.cacheTTL, s.log)
	return records, nil
}

func (s *ResultService) fetchSubjects(ctx context.Context, token, userKey string) ([]model.Subject, string, error) {
	key := s.subjectsKey(userKey)
	if cached, ok := cacheGet[model.Subject](ctx, s.rdb, key, s.log); ok {
		return cached.Records, version(userKey, cached.FetchedAt), nil
	}

	subjects, err := s.client.FetchSubjects(ctx, token, nil)
	if err != nil {
		return nil, "", err
	}
	fetchedAt := time.Now()
	cacheSet(ctx, s.rdb, key, cachedRecords[model.Subject]{FetchedAt: fetchedAt, Records: subjects}, s.cacheTTL, s.log)
	return subjects, version(userKey, fetchedAt), nil
}

func version(userKey string, fetchedAt time.Time) string {
	return fmt.Sprintf("%s@%d", userKey, fetchedAt.UnixNano())
}

func cacheGet[T any](ctx context.Context, rdb *redis.Client, key string, log zerolog.Logger) (cachedRecords[T], bool) {
	var cached cachedRecords[T]
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return cached, false
	}
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, ignoring")
		return cached, false
	}
	return cached, true
}

func cacheSet[T any](ctx context.Context, rdb *redis.Client, key string, val cachedRecords[T], ttl time.Duration, log zerolog.Logger) {
	raw, err := json.Marshal(val)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
