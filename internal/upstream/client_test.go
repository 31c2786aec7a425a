package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 2*time.Second, zerolog.Nop()), srv
}

func TestFetchResultsSuccess(t *testing.T) {
	var gotAuth, gotQuery string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[
			{"id":"r1","subject_code":"CS101","level":200,"semester_number":3,
			 "uploaded_by":{"name":"Amara Silva","id":"staff-1"},
			 "statistics":{"total_students":40,"passed_students":30,"failed_students":10},
			 "status":"completed"}
		]}`))
	})
	defer srv.Close()

	params := url.Values{"faculty": {"Computing"}}
	records, err := c.FetchResults(context.Background(), "tok-123", params)
	if err != nil {
		t.Fatalf("FetchResults: %v", err)
	}
	if len(records) != 1 || records[0].ID != "r1" {
		t.Fatalf("records = %+v, want one record r1", records)
	}
	if records[0].UploadedBy.Name != "Amara Silva" {
		t.Errorf("nested uploader not decoded: %+v", records[0].UploadedBy)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want bearer pass-through", gotAuth)
	}
	if gotQuery != "faculty=Computing" {
		t.Errorf("query = %q, want faculty=Computing", gotQuery)
	}
}

func TestFetchResultsFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`{"success":false,"message":"backend down"}`))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "success false with 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":false,"message":"query rejected"}`))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>not json</html>`))
			},
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(tt.handler)
			defer srv.Close()

			_, err := c.FetchResults(context.Background(), "", nil)
			var ue *Error
			if !errors.As(err, &ue) {
				t.Fatalf("error = %v, want *upstream.Error", err)
			}
			if ue.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", ue.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	var gotPath, gotBody string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte(`{"success":true}`))
	})
	defer srv.Close()

	if err := c.MarkRead(context.Background(), "tok", "news-9", "student-42"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if gotPath != "/news/news-9/read" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody != `{"user_key":"student-42"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestFetchNewsToleratesBadTimestamp(t *testing.T) {
	// One record with an unparseable created_at must not fail the whole
	// feed; it decodes with a zero timestamp and only drops out of delta
	// consideration.
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":"good","title":"Exam schedule","created_at":"2026-03-01T10:00:00Z"},
			{"id":"bad","title":"Results out","created_at":"03/01/2026 10:00"}
		]}`))
	})
	defer srv.Close()

	records, err := c.FetchNews(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("FetchNews: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want both", len(records))
	}
	if records[0].CreatedAt.IsZero() {
		t.Error("well-formed timestamp decoded as zero")
	}
	if !records[1].CreatedAt.IsZero() {
		t.Errorf("malformed timestamp decoded as %v, want zero", records[1].CreatedAt)
	}
}

func TestFetchEmptyData(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	defer srv.Close()

	records, err := c.FetchNews(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("FetchNews: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want empty", records)
	}
}
