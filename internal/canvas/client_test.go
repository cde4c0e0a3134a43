package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseNextLink(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{`<https://c.edu/api/v1/courses?page=2>; rel="next", <https://c.edu/api/v1/courses?page=5>; rel="last"`, "https://c.edu/api/v1/courses?page=2"},
		{`<https://c.edu/api/v1/courses?page=1>; rel="first"`, ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseNextLink(tc.header); got != tc.want {
			t.Errorf("parseNextLink(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsConfigured(t *testing.T) {
	if NewClient("", "").IsConfigured() {
		t.Error("empty client reports configured")
	}
	if NewClient("https://c.edu", "").IsConfigured() {
		t.Error("missing token reports configured")
	}
	if !NewClient("https://c.edu", "tok").IsConfigured() {
		t.Error("complete client reports unconfigured")
	}
}

func TestListCoursesPaginates(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		switch r.URL.Query().Get("page") {
		case "2":
			fmt.Fprint(w, `[{"id": 102, "name": "PHYS 201"}]`)
		default:
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2>; rel="next"`, srv.URL))
			fmt.Fprint(w, `[{"id": 101, "name": "CS 450"}]`)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	courses := client.ListCourses(context.Background(), "active")
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2 across pages", len(courses))
	}
	if courses[0].Name != "CS 450" || courses[1].Name != "PHYS 201" {
		t.Errorf("courses = %+v", courses)
	}
}

func TestListCoursesPaginationCapped(t *testing.T) {
	var srv *httptest.Server
	var calls int
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Always advertise a next page.
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=%d>; rel="next"`, srv.URL, calls+1))
		fmt.Fprint(w, `[{"id": 1, "name": "Loop"}]`)
	}))
	defer srv.Close()

	courses := NewClient(srv.URL, "tok").ListCourses(context.Background(), "active")
	if calls != maxPages {
		t.Errorf("server called %d times, want %d", calls, maxPages)
	}
	if len(courses) != maxPages {
		t.Errorf("got %d courses", len(courses))
	}
}

func TestListCoursesFailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if courses := NewClient(srv.URL, "bad").ListCourses(context.Background(), "active"); courses != nil {
		t.Errorf("failed fetch should yield nil, got %v", courses)
	}
}

func TestListAssignments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/courses/101/assignments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("order_by") != "due_at" {
			t.Errorf("order_by = %q", r.URL.Query().Get("order_by"))
		}
		fmt.Fprint(w, `[{
			"id": 5, "name": "Midterm Exam", "due_at": "2026-03-20T17:00:00Z",
			"points_possible": 80, "workflow_state": "published",
			"submission": {"submitted_at": ""}
		}]`)
	}))
	defer srv.Close()

	assignments := NewClient(srv.URL, "tok").ListAssignments(context.Background(), 101)
	if len(assignments) != 1 {
		t.Fatalf("got %d assignments", len(assignments))
	}
	a := assignments[0]
	if a.Name != "Midterm Exam" || *a.PointsPossible != 80 {
		t.Errorf("assignment = %+v", a)
	}
}

func TestListAnnouncements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("context_codes[]"); got != "course_101" {
			t.Errorf("context_codes = %q", got)
		}
		fmt.Fprint(w, `[{"id": 9, "title": "Exam moved", "message": "<p>Now Friday</p>", "posted_at": "2026-03-10T09:00:00Z"}]`)
	}))
	defer srv.Close()

	anns := NewClient(srv.URL, "tok").ListAnnouncements(context.Background(), 101, 10)
	if len(anns) != 1 || anns[0].Title != "Exam moved" {
		t.Errorf("announcements = %+v", anns)
	}
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/self/profile" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id": 42, "name": "Morgan"}`)
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, "tok").GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.ID != 42 || p.Name != "Morgan" {
		t.Errorf("profile = %+v", p)
	}
}

func TestListUpcomingEvents(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/calendar_events" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "assignment" {
			t.Errorf("type = %q", got)
		}
		if got := r.URL.Query().Get("start_date"); got != "2026-03-16T12:00:00Z" {
			t.Errorf("start_date = %q", got)
		}
		if got := r.URL.Query().Get("end_date"); got != "2026-03-23T12:00:00Z" {
			t.Errorf("end_date = %q", got)
		}
		fmt.Fprint(w, `[{"id": 7, "title": "Guest Lecture", "start_at": "2026-03-18T16:00:00Z", "html_url": "https://canvas/ev/7"}]`)
	}))
	defer srv.Close()

	events := NewClient(srv.URL, "tok").ListUpcomingEvents(context.Background(), now, 7)
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Title != "Guest Lecture" || events[0].StartAt != "2026-03-18T16:00:00Z" {
		t.Errorf("event = %+v", events[0])
	}
}
