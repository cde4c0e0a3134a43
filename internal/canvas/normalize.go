package canvas

import (
	"fmt"
	"strings"

	"github.com/mhollis/beacon/internal/htmlutil"
	"github.com/mhollis/beacon/internal/scoring"
)

const snippetLimit = 300

// Task is a normalized assignment with a stable cross-run id.
type Task struct {
	ID             string           `json:"id"` // canvas:<course>:<assignment>
	CourseID       int64            `json:"course_id"`
	CourseName     string           `json:"course_name"`
	Title          string           `json:"title"`
	Type           scoring.TaskType `json:"type"`
	DueAt          string           `json:"due_at,omitempty"`
	PointsPossible *float64         `json:"points_possible,omitempty"`
	URL            string           `json:"url,omitempty"`
	UpdatedAt      string           `json:"updated_at,omitempty"`
	HasSubmission  bool             `json:"has_submission"`
	Tags           []string         `json:"tags,omitempty"`

	// Set by DetectDeadlineChanges.
	DeadlineChange string `json:"-"` // "earlier" or "later"
	PreviousDue    string `json:"-"`
}

// Announcement is a normalized course announcement.
type Announcement struct {
	ID             string   `json:"id"` // canvas:announcement:<id>
	CourseID       int64    `json:"course_id"`
	CourseName     string   `json:"course_name"`
	Title          string   `json:"title"`
	MessageSnippet string   `json:"message_snippet"`
	PostedAt       string   `json:"posted_at,omitempty"`
	URL            string   `json:"url,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IsUrgent       bool     `json:"is_urgent"`
}

// explicitType maps Canvas submission types onto task types when the
// title gives no hint.
func explicitType(submissionTypes []string) scoring.TaskType {
	for _, st := range submissionTypes {
		switch st {
		case "online_quiz":
			return scoring.TypeQuiz
		case "discussion_topic":
			return scoring.TypeDiscussion
		}
	}
	return scoring.TypeAssignment
}

// extractTags derives display tags from a task's type, points, and title.
func extractTags(title string, tt scoring.TaskType, points *float64) []string {
	var tags []string

	switch tt {
	case scoring.TypeExam, scoring.TypeMidterm, scoring.TypeFinal, scoring.TypeQuiz:
		tags = append(tags, "exam")
	case scoring.TypeProject:
		tags = append(tags, "project")
	}

	if points != nil {
		if *points >= 100 {
			tags = append(tags, "high_impact")
		} else if *points >= 50 {
			tags = append(tags, "medium_impact")
		}
	}

	lower := strings.ToLower(title)
	if strings.Contains(lower, "final") {
		tags = append(tags, "final")
	}
	if strings.Contains(lower, "midterm") {
		tags = append(tags, "midterm")
	}
	if strings.Contains(lower, "group") || strings.Contains(lower, "team") {
		tags = append(tags, "group_work")
	}
	return tags
}

// NormalizeAssignment converts a raw assignment into a Task. Unpublished
// assignments and records without an id return ok=false.
func NormalizeAssignment(a Assignment, courseID int64, courseName string) (Task, bool) {
	if a.ID == 0 || a.WorkflowState != "published" {
		return Task{}, false
	}

	title := a.Name
	if title == "" {
		title = "Untitled Assignment"
	}

	tt := scoring.DetectType(title, explicitType(a.SubmissionTypes))

	return Task{
		ID:             fmt.Sprintf("canvas:%d:%d", courseID, a.ID),
		CourseID:       courseID,
		CourseName:     courseName,
		Title:          title,
		Type:           tt,
		DueAt:          a.DueAt,
		PointsPossible: a.PointsPossible,
		URL:            a.HTMLURL,
		UpdatedAt:      a.UpdatedAt,
		HasSubmission:  a.Submission != nil && a.Submission.SubmittedAt != "",
		Tags:           extractTags(title, tt, a.PointsPossible),
	}, true
}

// Announcement keyword groups. An announcement carrying any tag is urgent.
var (
	examWords     = []string{"exam", "midterm", "final", "quiz"}
	deadlineWords = []string{"deadline", "due date", "changed", "moved"}
	requiredWords = []string{"required", "mandatory", "must"}
	scheduleWords = []string{"cancelled", "canceled", "postponed"}
)

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// extractAnnouncementTags tags an announcement by its content.
func extractAnnouncementTags(title, message string) []string {
	combined := strings.ToLower(title + " " + message)

	var tags []string
	if containsAny(combined, examWords) {
		tags = append(tags, "exam")
	}
	if containsAny(combined, deadlineWords) {
		tags = append(tags, "deadline_change")
	}
	if containsAny(combined, requiredWords) {
		tags = append(tags, "required_action")
	}
	if containsAny(combined, scheduleWords) {
		tags = append(tags, "schedule_change")
	}
	return tags
}

// NormalizeAnnouncement converts a raw announcement, stripping HTML from
// the message and deriving urgency from content tags.
func NormalizeAnnouncement(a RawAnnouncement, courseID int64, courseName string) (Announcement, bool) {
	if a.ID == 0 {
		return Announcement{}, false
	}

	title := a.Title
	if title == "" {
		title = "Untitled Announcement"
	}

	clean := htmlutil.Strip(a.Message)
	tags := extractAnnouncementTags(title, clean)

	return Announcement{
		ID:             fmt.Sprintf("canvas:announcement:%d", a.ID),
		CourseID:       courseID,
		CourseName:     courseName,
		Title:          title,
		MessageSnippet: htmlutil.Snippet(a.Message, snippetLimit),
		PostedAt:       a.PostedAt,
		URL:            a.HTMLURL,
		Tags:           tags,
		IsUrgent:       len(tags) > 0,
	}, true
}
