package notify

import (
	"fmt"
	"strings"

	"github.com/mhollis/beacon/internal/canvas"
	"github.com/mhollis/beacon/internal/feeds"
	"github.com/mhollis/beacon/internal/newsfilter"
	"github.com/mhollis/beacon/internal/scoring"
	"github.com/mhollis/beacon/internal/timeutil"
	"github.com/mhollis/beacon/internal/tracker"
)

var typeEmoji = map[scoring.TaskType]string{
	scoring.TypeExam:       "📝",
	scoring.TypeMidterm:    "📝",
	scoring.TypeFinal:      "📝",
	scoring.TypeQuiz:       "❓",
	scoring.TypeProject:    "📊",
	scoring.TypePaper:      "📄",
	scoring.TypeLab:        "🔬",
	scoring.TypeDiscussion: "💬",
	scoring.TypeAssignment: "📋",
	scoring.TypeReading:    "📖",
}

// TypeEmoji returns the display emoji for a task type.
func TypeEmoji(tt scoring.TaskType) string {
	if e, ok := typeEmoji[tt]; ok {
		return e
	}
	return "📋"
}

var priorityEmoji = map[scoring.Label]string{
	scoring.LabelCritical: "🔴",
	scoring.LabelHigh:     "🟠",
	scoring.LabelMedium:   "🟡",
	scoring.LabelLow:      "🟢",
}

// AlertEmbed builds a deadline or announcement alert colored by priority.
func AlertEmbed(title, description, priority, url string, fields []EmbedField, footer string) Embed {
	return Embed{
		Title:       title,
		Description: description,
		Color:       Color(priority),
		URL:         url,
		Fields:      fields,
		Footer:      footer,
	}
}

// TaskAlertEmbed builds the alert for one urgent task.
func TaskAlertEmbed(task canvas.ScoredTask, reason string, clock *timeutil.Clock) Embed {
	due := clock.FormatRelative(timeutil.ParseTime(task.DueAt))
	return AlertEmbed(
		"🚨 "+task.Title,
		reason,
		string(task.Priority.Label),
		task.URL,
		[]EmbedField{
			{Name: task.CourseName, Value: due, Inline: true},
			{Name: "Priority", Value: strings.ToUpper(string(task.Priority.Label)), Inline: true},
		},
		strings.Join(task.Priority.Reasons, " | "),
	)
}

// AnnouncementAlertEmbed builds the alert for an urgent announcement.
func AnnouncementAlertEmbed(ann canvas.Announcement) Embed {
	return AlertEmbed(
		"📢 "+ann.Title,
		firstN(ann.MessageSnippet, 500),
		"high",
		ann.URL,
		[]EmbedField{
			{Name: ann.CourseName, Value: strings.Join(ann.Tags, ", "), Inline: false},
		},
		"",
	)
}

// DeadlineChangeEmbed builds the alert for a deadline that moved earlier.
func DeadlineChangeEmbed(task canvas.ScoredTask, clock *timeutil.Clock) Embed {
	previous := clock.FormatDateTime(timeutil.ParseTime(task.PreviousDue), true)
	current := clock.FormatDateTime(timeutil.ParseTime(task.DueAt), true)
	return AlertEmbed(
		"🚨 "+task.Title,
		"⚠️ Deadline moved earlier!",
		string(task.Priority.Label),
		task.URL,
		[]EmbedField{
			{Name: "Was", Value: previous, Inline: true},
			{Name: "Now", Value: current, Inline: true},
		},
		strings.Join(task.Priority.Reasons, " | "),
	)
}

func briefLine(task canvas.ScoredTask, clock *timeutil.Clock, withHours, withDate bool) string {
	line := fmt.Sprintf("%s %s", TypeEmoji(task.Type), task.Title)
	if withHours {
		if h := clock.HoursUntil(timeutil.ParseTime(task.DueAt)); h != nil {
			line += fmt.Sprintf(" (%dh)", int(*h))
		}
	}
	if withDate {
		line += " - " + clock.FormatDateTime(timeutil.ParseTime(task.DueAt), false)
	}
	return line
}

// DailyBriefEmbed builds the daily brief with Today/Tomorrow/This Week
// sections plus any calendar events not already covered by a task. The
// embed color escalates with today's load: red when an exam or quiz is
// due today, orange at three or more tasks, yellow at one, green when
// clear.
func DailyBriefEmbed(today, tomorrow, week []canvas.ScoredTask, events []canvas.CalendarEvent, clock *timeutil.Clock) Embed {
	var fields []EmbedField

	if len(today) > 0 {
		var lines []string
		for _, task := range capTasks(today, 5) {
			lines = append(lines, briefLine(task, clock, true, false))
		}
		fields = append(fields, EmbedField{
			Name:  fmt.Sprintf("📅 Today (%d due)", len(today)),
			Value: strings.Join(lines, "\n"),
		})
	} else {
		fields = append(fields, EmbedField{Name: "📅 Today", Value: "✅ Nothing due today!"})
	}

	if len(tomorrow) > 0 {
		var lines []string
		for _, task := range capTasks(tomorrow, 5) {
			lines = append(lines, briefLine(task, clock, false, false))
		}
		fields = append(fields, EmbedField{
			Name:  fmt.Sprintf("📆 Tomorrow (%d due)", len(tomorrow)),
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(week) > 0 {
		var lines []string
		for _, task := range capTasks(week, 5) {
			lines = append(lines, briefLine(task, clock, false, true))
		}
		fields = append(fields, EmbedField{
			Name:  fmt.Sprintf("🗓️ This Week (%d due)", len(week)),
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(events) > 0 {
		var lines []string
		for _, ev := range events {
			if len(lines) == 5 {
				break
			}
			line := "📌 " + ev.Title
			if start := timeutil.ParseTime(ev.StartAt); start != nil {
				line += " - " + clock.FormatDateTime(start, false)
			}
			lines = append(lines, line)
		}
		fields = append(fields, EmbedField{
			Name:  fmt.Sprintf("🗓️ Calendar (%d events)", len(events)),
			Value: strings.Join(lines, "\n"),
		})
	}

	color := Color("green")
	switch {
	case hasExamToday(today):
		color = Color("red")
	case len(today) >= 3:
		color = Color("orange")
	case len(today) >= 1:
		color = Color("yellow")
	}

	total := len(today) + len(tomorrow) + len(week)
	return Embed{
		Title:       "📚 Daily Academic Brief",
		Description: fmt.Sprintf("You have **%d tasks** coming up this week.", total),
		Color:       color,
		Fields:      fields,
		Footer:      "Stay focused and good luck! 💪",
	}
}

func capTasks(tasks []canvas.ScoredTask, n int) []canvas.ScoredTask {
	if len(tasks) > n {
		return tasks[:n]
	}
	return tasks
}

func hasExamToday(today []canvas.ScoredTask) bool {
	for _, task := range today {
		switch task.Type {
		case scoring.TypeExam, scoring.TypeMidterm, scoring.TypeFinal, scoring.TypeQuiz:
			return true
		}
	}
	return false
}

// StudyPlanEmbed lists the top priority tasks, one rank per line.
func StudyPlanEmbed(tasks []canvas.ScoredTask, clock *timeutil.Clock) Embed {
	var lines []string
	for i, task := range tasks {
		emoji, ok := priorityEmoji[task.Priority.Label]
		if !ok {
			emoji = "⚪"
		}
		due := clock.FormatRelative(timeutil.ParseTime(task.DueAt))
		lines = append(lines, fmt.Sprintf("%s **%d. %s**", emoji, i+1, task.Title))
		lines = append(lines, fmt.Sprintf("   %s • %s", task.CourseName, due))
	}

	description := "No urgent tasks!"
	if len(lines) > 0 {
		description = strings.Join(lines, "\n")
	}
	return Embed{
		Title:       "📋 Study Plan",
		Description: description,
		Color:       Color("blue"),
	}
}

var categoryEmoji = map[string]string{
	feeds.CategoryAI:       "🤖",
	feeds.CategoryEarnings: "💰",
	feeds.CategoryMacro:    "📊",
}

// NewsEmbed builds a news post colored by category, with optional
// "why it matters" context appended to the summary.
func NewsEmbed(item feeds.NewsItem, whyItMatters string) Embed {
	emoji, ok := categoryEmoji[item.Category]
	if !ok {
		emoji = "📰"
	}

	color := Color("gray")
	switch item.Category {
	case feeds.CategoryAI:
		color = Color("purple")
	case feeds.CategoryEarnings:
		color = Color("green")
	case feeds.CategoryMacro:
		color = Color("orange")
	}

	description := firstN(item.Summary, 400)
	if whyItMatters != "" {
		description += "\n\n**Why it matters:** " + whyItMatters
	}

	return Embed{
		Title:       emoji + " " + item.Title,
		Description: description,
		Color:       color,
		URL:         item.URL,
	}
}

// WeeklyReportEmbed summarizes the week's activity counts.
func WeeklyReportEmbed(weekEnding string, totalEvents, activeTasks, alertsThisWeek int, stats tracker.WeekStats, streak tracker.Streak) Embed {
	fields := []EmbedField{
		{Name: "📌 Events Tracked", Value: fmt.Sprintf("%d total events processed", totalEvents), Inline: true},
		{Name: "📚 Tasks Monitored", Value: fmt.Sprintf("%d active tasks", activeTasks), Inline: true},
		{Name: "🔔 Alerts This Week", Value: fmt.Sprint(alertsThisWeek), Inline: true},
	}

	if stats.TotalSessions > 0 {
		fields = append(fields, EmbedField{
			Name: "📖 Study Time",
			Value: fmt.Sprintf("%d minutes across %d sessions (%d days)",
				stats.TotalMinutes, stats.TotalSessions, stats.DaysStudied),
			Inline: false,
		})
	}
	if streak.Current > 0 {
		fields = append(fields, EmbedField{
			Name:   "🔥 Study Streak",
			Value:  fmt.Sprintf("%d days (best: %d)", streak.Current, streak.Best),
			Inline: true,
		})
	}

	return Embed{
		Title:       "📊 Weekly Summary Report",
		Description: "Activity summary for the week ending " + weekEnding,
		Color:       Color("blue"),
		Fields:      fields,
		Footer:      "Keep up the great work! 🎯",
	}
}

// AnalystPromptEmbed frames a high-impact story as an analysis worksheet.
func AnalystPromptEmbed(storyTitle string, p newsfilter.Prompt) Embed {
	return Embed{
		Title:       "🧠 If I Were An Analyst: " + firstN(storyTitle, 100),
		Description: p.Body(),
		Color:       Color("purple"),
	}
}

// ValuationLensEmbed builds the companion post classifying which part of
// a valuation the story moves.
func ValuationLensEmbed(l newsfilter.Lens) Embed {
	return Embed{
		Title:       "📊 Valuation Lens",
		Description: l.Body(),
		Color:       Color("blue"),
	}
}

// ClassroomBridgeEmbed ties a story to the finance concepts it illustrates.
func ClassroomBridgeEmbed(concepts []string) Embed {
	joined := strings.Join(concepts, ", ")
	return Embed{
		Title:       "📚 Classroom Bridge",
		Description: "Related to: " + joined,
		Color:       Color("gray"),
		Fields: []EmbedField{
			{Name: "Related Concepts", Value: joined},
		},
	}
}

// MacroEmbed builds the post for a confirmed macro event.
func MacroEmbed(m newsfilter.MacroItem) Embed {
	description := m.Summary() + "\n\n**Why it matters:** " + newsfilter.WhyItMatters(m.EventType, m.Rate)
	return Embed{
		Title:       m.Emoji + " " + firstN(m.Title, 100),
		Description: description,
		Color:       Color("orange"),
		URL:         m.URL,
	}
}

// EarningsEmbed builds the post for a watchlist earnings story.
func EarningsEmbed(e newsfilter.EarningsItem) Embed {
	return Embed{
		Title:       "💰 " + firstN(e.Title, 100),
		Description: e.Summary(),
		Color:       Color("green"),
		URL:         e.URL,
	}
}
