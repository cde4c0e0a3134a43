package canvas

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/mhollis/beacon/internal/scoring"
	"github.com/mhollis/beacon/internal/state"
	"github.com/mhollis/beacon/internal/timeutil"
)

// SyncResult is the outcome of one full course sync.
type SyncResult struct {
	Tasks         []Task
	Announcements []Announcement
	CoursesSynced int
	Errors        []string
}

// SyncAll fetches and normalizes assignments and announcements from every
// active course. One course failing does not stop the others.
func SyncAll(ctx context.Context, client *Client) SyncResult {
	var result SyncResult

	if !client.IsConfigured() {
		log.Print("beacon: canvas client not configured")
		result.Errors = append(result.Errors, "canvas client not configured")
		return result
	}

	courses := client.ListCourses(ctx, "active")
	log.Printf("beacon: syncing %d courses", len(courses))

	for _, course := range courses {
		if course.ID == 0 {
			continue
		}
		name := course.Name
		if name == "" {
			name = "Unknown Course"
		}

		for _, a := range client.ListAssignments(ctx, course.ID) {
			if task, ok := NormalizeAssignment(a, course.ID, name); ok {
				result.Tasks = append(result.Tasks, task)
			}
		}
		for _, ann := range client.ListAnnouncements(ctx, course.ID, 10) {
			if normalized, ok := NormalizeAnnouncement(ann, course.ID, name); ok {
				result.Announcements = append(result.Announcements, normalized)
			}
		}
		result.CoursesSynced++
	}

	log.Printf("beacon: sync complete: %d tasks, %d announcements from %d courses",
		len(result.Tasks), len(result.Announcements), result.CoursesSynced)
	return result
}

// DetectDeadlineChanges compares current tasks against the persisted
// snapshot and splits out those whose due date moved. Must run before
// UpdateSeenTasks or every change is invisible. Tasks seen for the first
// time establish a baseline and never count as moved.
func DetectDeadlineChanges(tasks []Task, snap *state.Snapshot) (movedEarlier, movedLater []Task) {
	for i := range tasks {
		task := &tasks[i]
		if task.ID == "" || task.DueAt == "" {
			continue
		}

		previous, ok := snap.SeenTasks[task.ID]
		if !ok || previous.DueAt == "" {
			continue
		}

		current := timeutil.ParseTime(task.DueAt)
		prior := timeutil.ParseTime(previous.DueAt)
		if current == nil || prior == nil {
			continue
		}

		switch {
		case current.Before(*prior):
			task.DeadlineChange = "earlier"
			task.PreviousDue = previous.DueAt
			movedEarlier = append(movedEarlier, *task)
		case current.After(*prior):
			task.DeadlineChange = "later"
			task.PreviousDue = previous.DueAt
			movedLater = append(movedLater, *task)
		}
	}

	if len(movedEarlier) > 0 {
		log.Printf("beacon: detected %d tasks with earlier deadlines", len(movedEarlier))
	}
	return movedEarlier, movedLater
}

// UpdateSeenTasks records each task's current due date in the snapshot.
// Titles are clipped so the state file stays small.
func UpdateSeenTasks(tasks []Task, snap *state.Snapshot, clock *timeutil.Clock) {
	now := clock.Now().Format(time.RFC3339)
	for _, task := range tasks {
		if task.ID == "" {
			continue
		}
		title := task.Title
		if len(title) > 100 {
			title = title[:100]
		}
		snap.SeenTasks[task.ID] = state.SeenTask{
			DueAt:     task.DueAt,
			UpdatedAt: task.UpdatedAt,
			LastSeen:  now,
			Title:     title,
		}
	}
}

// ScoredTask pairs a task with its computed priority.
type ScoredTask struct {
	Task
	Priority scoring.Priority
}

// Score computes the priority breakdown for one task.
func Score(task Task, clock *timeutil.Clock) ScoredTask {
	hours := clock.HoursUntil(timeutil.ParseTime(task.DueAt))
	return ScoredTask{
		Task:     task,
		Priority: scoring.Calculate(hours, task.PointsPossible, task.Type, task.Title),
	}
}

// SortByPriority scores every task and returns them highest first. The
// sort is stable so equal scores keep input order.
func SortByPriority(tasks []Task, clock *timeutil.Clock) []ScoredTask {
	scored := make([]ScoredTask, 0, len(tasks))
	for _, task := range tasks {
		scored = append(scored, Score(task, clock))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority.Score > scored[j].Priority.Score
	})
	return scored
}
