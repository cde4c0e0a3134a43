// Package canvas talks to a Canvas LMS instance and normalizes its
// assignments and announcements into tasks ready for scoring.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mhollis/beacon/internal/httpx"
)

// maxPages bounds Link-header pagination so a misbehaving server cannot
// loop a job forever.
const maxPages = 10

// Course is a raw Canvas course record.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is a raw Canvas assignment record.
type Assignment struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	DueAt           string      `json:"due_at"`
	PointsPossible  *float64    `json:"points_possible"`
	SubmissionTypes []string    `json:"submission_types"`
	HTMLURL         string      `json:"html_url"`
	UpdatedAt       string      `json:"updated_at"`
	WorkflowState   string      `json:"workflow_state"`
	Submission      *Submission `json:"submission"`
}

// Submission is the user's submission attached to an assignment.
type Submission struct {
	SubmittedAt string `json:"submitted_at"`
}

// RawAnnouncement is a raw Canvas announcement record.
type RawAnnouncement struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	PostedAt string `json:"posted_at"`
	HTMLURL  string `json:"html_url"`
}

// Client is a Canvas REST API client with bearer auth and pagination.
type Client struct {
	baseURL string
	token   string
	http    *httpx.Client
}

// NewClient creates a client for a Canvas instance. baseURL is the
// instance root, e.g. https://school.instructure.com.
func NewClient(baseURL, token string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	var opts []httpx.Option
	if token != "" {
		opts = append(opts, httpx.WithHeaders(map[string]string{
			"Authorization": "Bearer " + token,
		}))
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    httpx.NewClient(opts...),
	}
}

// IsConfigured reports whether both the instance URL and token are set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.token != ""
}

func (c *Client) apiURL(endpoint string, params url.Values) string {
	u := c.baseURL + "/api/v1" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// parseNextLink extracts the rel="next" URL from a Link header, or ""
// when there is no next page.
func parseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start != -1 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

// paginate follows Link headers collecting every page. An error after
// the first page keeps the pages already collected.
func paginate[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("per_page") == "" {
		params.Set("per_page", "100")
	}

	var all []T
	pageURL := c.apiURL(endpoint, params)

	for page := 0; pageURL != "" && page < maxPages; page++ {
		resp, err := c.http.Get(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			log.Printf("beacon: pagination stopped at page %d of %s: %v", page+1, endpoint, err)
			break
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return all, fmt.Errorf("read page from %s: %w", endpoint, err)
		}

		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return all, fmt.Errorf("decode page from %s: %w", endpoint, err)
		}
		all = append(all, items...)

		pageURL = parseNextLink(resp.Header.Get("Link"))
	}
	return all, nil
}

// ListCourses returns the user's courses in the given enrollment state.
// Failures return an empty list; a course fetch error is logged, not fatal.
func (c *Client) ListCourses(ctx context.Context, enrollmentState string) []Course {
	params := url.Values{}
	if enrollmentState != "" {
		params.Set("enrollment_state", enrollmentState)
	}
	courses, err := paginate[Course](ctx, c, "/courses", params)
	if err != nil {
		log.Printf("beacon: failed to fetch courses: %v", err)
		return nil
	}
	log.Printf("beacon: fetched %d courses", len(courses))
	return courses
}

// ListAssignments returns a course's assignments with submissions
// included, ordered by due date.
func (c *Client) ListAssignments(ctx context.Context, courseID int64) []Assignment {
	params := url.Values{}
	params.Set("order_by", "due_at")
	params.Set("include[]", "submission")

	endpoint := fmt.Sprintf("/courses/%d/assignments", courseID)
	assignments, err := paginate[Assignment](ctx, c, endpoint, params)
	if err != nil {
		log.Printf("beacon: failed to fetch assignments for course %d: %v", courseID, err)
		return nil
	}
	log.Printf("beacon: fetched %d assignments for course %d", len(assignments), courseID)
	return assignments
}

// ListAnnouncements returns a course's latest announcements, capped at
// maxCount, single page.
func (c *Client) ListAnnouncements(ctx context.Context, courseID int64, maxCount int) []RawAnnouncement {
	params := url.Values{}
	params.Set("context_codes[]", fmt.Sprintf("course_%d", courseID))
	params.Set("per_page", fmt.Sprint(maxCount))

	resp, err := c.http.Get(ctx, c.apiURL("/announcements", params))
	if err != nil {
		log.Printf("beacon: failed to fetch announcements for course %d: %v", courseID, err)
		return nil
	}
	defer resp.Body.Close()

	var announcements []RawAnnouncement
	if err := json.NewDecoder(resp.Body).Decode(&announcements); err != nil {
		log.Printf("beacon: failed to decode announcements for course %d: %v", courseID, err)
		return nil
	}
	return announcements
}

// Profile is the authenticated user's Canvas profile.
type Profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GetProfile fetches the current user's profile. Used to verify auth.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var p Profile
	if err := c.http.GetJSON(ctx, c.apiURL("/users/self/profile", nil), &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// CalendarEvent is a raw Canvas calendar event.
type CalendarEvent struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	StartAt string `json:"start_at"`
	HTMLURL string `json:"html_url"`
}

// ListUpcomingEvents returns assignment calendar events in the next N days.
func (c *Client) ListUpcomingEvents(ctx context.Context, now time.Time, days int) []CalendarEvent {
	params := url.Values{}
	params.Set("type", "assignment")
	params.Set("start_date", now.UTC().Format(time.RFC3339))
	params.Set("end_date", now.UTC().Add(time.Duration(days)*24*time.Hour).Format(time.RFC3339))

	events, err := paginate[CalendarEvent](ctx, c, "/calendar_events", params)
	if err != nil {
		log.Printf("beacon: failed to fetch calendar events: %v", err)
		return nil
	}
	return events
}
