// Package beacon wires the notifier's jobs together: Canvas sync with
// deadline alerts, the daily brief, news polling, and the weekly report.
// Each job loads the state snapshot, does its work, and saves once.
package beacon

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mhollis/beacon/internal/canvas"
	"github.com/mhollis/beacon/internal/config"
	"github.com/mhollis/beacon/internal/dedupe"
	"github.com/mhollis/beacon/internal/feeds"
	"github.com/mhollis/beacon/internal/newsfilter"
	"github.com/mhollis/beacon/internal/notify"
	"github.com/mhollis/beacon/internal/scoring"
	"github.com/mhollis/beacon/internal/state"
	"github.com/mhollis/beacon/internal/timeutil"
	"github.com/mhollis/beacon/internal/tracker"
)

// Alert thresholds in hours.
const (
	urgentHours = 24 // anything due within this window
	examHours   = 72 // exams and quizzes get a longer runway
)

const studyPlanLimit = 5

// Impact score at or above which a posted story also gets the analyst
// prompt treatment.
const analystPromptScore = 60

// webhooks holds one poster per channel.
type webhooks struct {
	alerts       *notify.Webhook
	dailyBrief   *notify.Webhook
	studyPlan    *notify.Webhook
	ai           *notify.Webhook
	earnings     *notify.Webhook
	macro        *notify.Webhook
	marketAlerts *notify.Webhook
	analyst      *notify.Webhook
	valuation    *notify.Webhook
	bridge       *notify.Webhook
}

// Engine runs the notifier's jobs against one config and state file.
type Engine struct {
	cfg     *config.Config
	clock   *timeutil.Clock
	store   *state.Store
	client  *canvas.Client
	fetcher *feeds.Fetcher
	hooks   webhooks
}

// NewEngine creates an engine from config. In dry-run mode every webhook
// prints its payload instead of posting.
func NewEngine(cfg *config.Config, dryRun bool) *Engine {
	return &Engine{
		cfg:     cfg,
		clock:   timeutil.NewClock(cfg.Timezone),
		store:   state.NewStore(cfg.StatePath),
		client:  canvas.NewClient(cfg.Canvas.BaseURL, cfg.Canvas.Token),
		fetcher: feeds.NewFetcher(nil),
		hooks: webhooks{
			alerts:       notify.NewWebhook("alerts", cfg.Webhooks.Alerts, dryRun),
			dailyBrief:   notify.NewWebhook("daily_brief", cfg.Webhooks.DailyBrief, dryRun),
			studyPlan:    notify.NewWebhook("study_plan", cfg.Webhooks.StudyPlan, dryRun),
			ai:           notify.NewWebhook("ai", cfg.Webhooks.AI, dryRun),
			earnings:     notify.NewWebhook("earnings", cfg.Webhooks.Earnings, dryRun),
			macro:        notify.NewWebhook("macro", cfg.Webhooks.Macro, dryRun),
			marketAlerts: notify.NewWebhook("market_alerts", cfg.Webhooks.MarketAlerts, dryRun),
			analyst:      notify.NewWebhook("analyst", cfg.Webhooks.Analyst, dryRun),
			valuation:    notify.NewWebhook("valuation", cfg.Webhooks.Valuation, dryRun),
			bridge:       notify.NewWebhook("bridge", cfg.Webhooks.Bridge, dryRun),
		},
	}
}

// newsWebhook routes a channel name to its poster.
func (e *Engine) newsWebhook(channel string) *notify.Webhook {
	switch channel {
	case feeds.CategoryAI:
		return e.hooks.ai
	case feeds.CategoryEarnings:
		return e.hooks.earnings
	case feeds.CategoryMacro:
		return e.hooks.macro
	default:
		return e.hooks.marketAlerts
	}
}

func isExamType(tt scoring.TaskType) bool {
	switch tt {
	case scoring.TypeExam, scoring.TypeMidterm, scoring.TypeFinal, scoring.TypeQuiz:
		return true
	}
	return false
}

// RunSync syncs Canvas, posts alerts for urgent tasks, moved deadlines, and
// urgent announcements, posts the study plan, and persists state. Deadline
// changes are detected before seen-tasks are updated; reversing that order
// would make every change invisible.
func (e *Engine) RunSync(ctx context.Context) (*SyncReport, error) {
	if !e.client.IsConfigured() {
		log.Print("beacon: canvas client not configured, skipping sync")
		return &SyncReport{}, nil
	}

	snap := e.store.Load()
	result := canvas.SyncAll(ctx, e.client)

	report := &SyncReport{
		CoursesSynced:       result.CoursesSynced,
		TasksSynced:         len(result.Tasks),
		AnnouncementsSynced: len(result.Announcements),
		Errors:              result.Errors,
	}

	movedEarlier, _ := canvas.DetectDeadlineChanges(result.Tasks, snap)
	moved := make(map[string]bool, len(movedEarlier))
	for _, task := range movedEarlier {
		moved[task.ID] = true
	}
	report.DeadlinesMoved = len(movedEarlier)

	sent := dedupe.NewSet(snap.SentEvents, e.clock.Now)

	for _, task := range result.Tasks {
		if task.DueAt == "" {
			continue
		}
		hours := e.clock.HoursUntil(timeutil.ParseTime(task.DueAt))
		if hours == nil || *hours < 0 {
			continue
		}

		var reason string
		deadlineMoved := false
		switch {
		case *hours <= urgentHours:
			reason = "Due " + e.clock.FormatRelative(timeutil.ParseTime(task.DueAt))
		case isExamType(task.Type) && *hours <= examHours:
			reason = "📝 Exam/Quiz " + e.clock.FormatRelative(timeutil.ParseTime(task.DueAt))
		case moved[task.ID]:
			deadlineMoved = true
		default:
			continue
		}

		// due_at is part of the fingerprint so a changed deadline
		// re-alerts instead of being swallowed as a duplicate.
		if !sent.CheckAndMark("deadline_alert", task.ID, map[string]string{"due_at": task.DueAt}) {
			continue
		}

		scored := canvas.Score(task, e.clock)
		var embed notify.Embed
		if deadlineMoved {
			embed = notify.DeadlineChangeEmbed(scored, e.clock)
		} else {
			embed = notify.TaskAlertEmbed(scored, reason, e.clock)
		}
		if e.hooks.alerts.Post(ctx, "", []notify.Embed{embed}) {
			report.AlertsPosted++
		}
	}

	for _, ann := range result.Announcements {
		if !ann.IsUrgent {
			continue
		}
		if !sent.CheckAndMark("announcement_alert", ann.ID, map[string]string{"posted_at": ann.PostedAt}) {
			continue
		}
		if e.hooks.alerts.Post(ctx, "", []notify.Embed{notify.AnnouncementAlertEmbed(ann)}) {
			report.AlertsPosted++
		}
	}

	if top := e.topPriorityTasks(result.Tasks, studyPlanLimit); len(top) > 0 {
		report.StudyPlanPosted = e.hooks.studyPlan.Post(ctx, "",
			[]notify.Embed{notify.StudyPlanEmbed(top, e.clock)})
	}

	canvas.UpdateSeenTasks(result.Tasks, snap, e.clock)
	sent.Cleanup(e.cfg.Dedup.MaxAgeDays)
	e.store.UpdateLastRun("canvas", e.clock.Now())
	if err := e.store.Save(); err != nil {
		return report, err
	}

	log.Printf("beacon: canvas job complete, posted %d alerts", report.AlertsPosted)
	return report, nil
}

// topPriorityTasks returns the highest-priority tasks due within the exam
// window, at most limit of them.
func (e *Engine) topPriorityTasks(tasks []canvas.Task, limit int) []canvas.ScoredTask {
	var upcoming []canvas.Task
	for _, task := range tasks {
		if task.DueAt == "" {
			continue
		}
		hours := e.clock.HoursUntil(timeutil.ParseTime(task.DueAt))
		if hours == nil || *hours < 0 || *hours > examHours {
			continue
		}
		upcoming = append(upcoming, task)
	}

	scored := canvas.SortByPriority(upcoming, e.clock)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// RunDailyBrief syncs Canvas and posts the Today/Tomorrow/This Week brief.
// Submitted tasks are left out; the brief is a to-do list, not a ledger.
func (e *Engine) RunDailyBrief(ctx context.Context) (*BriefReport, error) {
	if !e.client.IsConfigured() {
		log.Print("beacon: canvas client not configured, skipping daily brief")
		return &BriefReport{}, nil
	}

	result := canvas.SyncAll(ctx, e.client)

	var today, tomorrow, week []canvas.Task
	for _, task := range result.Tasks {
		if task.DueAt == "" || task.HasSubmission {
			continue
		}
		due := timeutil.ParseTime(task.DueAt)
		switch {
		case e.clock.IsToday(due):
			today = append(today, task)
		case e.clock.IsTomorrow(due):
			tomorrow = append(tomorrow, task)
		case e.clock.IsThisWeek(due):
			week = append(week, task)
		}
	}

	// Calendar events duplicate assignments on Canvas; only the ones
	// without a matching task add information to the brief.
	taskTitles := make(map[string]bool, len(result.Tasks))
	for _, task := range result.Tasks {
		taskTitles[task.Title] = true
	}
	var events []canvas.CalendarEvent
	for _, ev := range e.client.ListUpcomingEvents(ctx, e.clock.Now(), 7) {
		if !taskTitles[ev.Title] {
			events = append(events, ev)
		}
	}

	embed := notify.DailyBriefEmbed(
		canvas.SortByPriority(today, e.clock),
		canvas.SortByPriority(tomorrow, e.clock),
		canvas.SortByPriority(week, e.clock),
		events,
		e.clock,
	)

	report := &BriefReport{
		Today:          len(today),
		Tomorrow:       len(tomorrow),
		ThisWeek:       len(week),
		CalendarEvents: len(events),
		Posted:         e.hooks.dailyBrief.Post(ctx, "", []notify.Embed{embed}),
	}

	e.store.UpdateLastRun("daily_brief", e.clock.Now())
	if err := e.store.Save(); err != nil {
		return report, err
	}

	log.Print("beacon: daily brief posted")
	return report, nil
}

// whyItMatters generates one line of context for a news post.
func whyItMatters(item feeds.NewsItem) string {
	switch item.Category {
	case feeds.CategoryEarnings:
		if len(item.Tickers) > 0 {
			return fmt.Sprintf("Earnings for %s may impact portfolio positions.", strings.Join(item.Tickers, ", "))
		}
	case feeds.CategoryAI:
		return "AI developments can affect tech valuations and competitive dynamics."
	case feeds.CategoryMacro:
		return "Macro data influences Fed policy and market discount rates."
	}
	if len(item.Tickers) > 0 {
		return "Relevant to: " + strings.Join(item.Tickers, ", ")
	}
	return ""
}

// RunNews fetches the feed catalog, filters for high-impact items, and
// posts each to its channel. Earnings and macro stories additionally get
// enriched posts on their dedicated channels, deduplicated separately so
// a story can appear once in each form but never twice in either.
func (e *Engine) RunNews(ctx context.Context) (*NewsReport, error) {
	snap := e.store.Load()
	sent := dedupe.NewSet(snap.SentEvents, e.clock.Now)
	watchlists := newsfilter.LoadWatchlists(e.cfg.News.WatchlistPath)

	var all []feeds.NewsItem
	byCategory := make(map[string][]feeds.NewsItem)
	for _, category := range []string{feeds.CategoryAI, feeds.CategoryMacro, feeds.CategoryGeneral} {
		items := e.fetcher.FetchCategory(ctx, category)
		byCategory[category] = items
		all = append(all, items...)
	}

	report := &NewsReport{ItemsFetched: len(all)}

	filtered := newsfilter.Filter(all, watchlists, e.cfg.News.MinScore)
	log.Printf("beacon: filtered %d items to %d", len(all), len(filtered))

	for _, item := range filtered {
		if item.ID == "" {
			continue
		}
		if !sent.CheckAndMark("news", item.ID, nil) {
			continue
		}
		hook := e.newsWebhook(newsfilter.Categorize(item, watchlists))
		if hook.Post(ctx, "", []notify.Embed{notify.NewsEmbed(item, whyItMatters(item))}) {
			report.ItemsPosted++
			if item.ImpactScore >= analystPromptScore && e.postAnalystPrompt(ctx, sent, item, "", "") {
				report.PromptsPosted++
			}
		}
	}

	// Earnings mentions hide in general market coverage too; AI and macro
	// feeds stay out of the pool.
	pool := e.fetcher.FetchCategory(ctx, feeds.CategoryEarnings)
	pool = append(pool, byCategory[feeds.CategoryGeneral]...)
	for _, item := range newsfilter.DetectEarningsItems(pool, watchlists.Tickers) {
		if !sent.CheckAndMark("earnings", item.ID, nil) {
			continue
		}
		if e.hooks.earnings.Post(ctx, "", []notify.Embed{notify.EarningsEmbed(item)}) {
			report.EarningsPosted++
		}
		if len(item.Tickers) > 0 && e.postAnalystPrompt(ctx, sent, item.NewsItem, "", item.Surprise) {
			report.PromptsPosted++
		}
	}

	for _, item := range newsfilter.DetectMacroItems(all) {
		if !sent.CheckAndMark("macro", item.ID, nil) {
			continue
		}
		if e.hooks.macro.Post(ctx, "", []notify.Embed{notify.MacroEmbed(item)}) {
			report.MacroPosted++
		}
		if item.Importance == "high" && e.postAnalystPrompt(ctx, sent, item.NewsItem, item.EventType, "") {
			report.PromptsPosted++
		}
	}

	sent.Cleanup(e.cfg.Dedup.MaxAgeDays)
	e.store.UpdateLastRun("news", e.clock.Now())
	if err := e.store.Save(); err != nil {
		return report, err
	}

	log.Printf("beacon: news job complete, posted %d items", report.ItemsPosted)
	return report, nil
}

// postAnalystPrompt posts the analyst worksheet, valuation lens, and
// classroom bridge for one story. Deduplicated on the story ID under its
// own event type so a story enriched twice (say as news and as a macro
// event) prompts once. Returns whether the set was posted.
func (e *Engine) postAnalystPrompt(ctx context.Context, sent *dedupe.Set, item feeds.NewsItem, eventType, surprise string) bool {
	if item.ID == "" || !sent.CheckAndMark("analyst_prompt", item.ID, nil) {
		return false
	}

	ticker := strings.Join(item.Tickers, ", ")
	prompt := newsfilter.AnalystPrompt(item.Category, eventType, ticker, surprise)
	posted := e.hooks.analyst.Post(ctx, "", []notify.Embed{notify.AnalystPromptEmbed(item.Title, prompt)})

	lens := newsfilter.ValuationLens(item.Category, eventType, surprise)
	e.hooks.valuation.Post(ctx, "", []notify.Embed{notify.ValuationLensEmbed(lens)})

	concepts := newsfilter.ClassroomConcepts(item.Category, eventType)
	e.hooks.bridge.Post(ctx, "", []notify.Embed{notify.ClassroomBridgeEmbed(concepts)})

	return posted
}

// RunWeekly aggregates the week's activity from the state snapshot and
// posts a summary to the daily brief channel.
func (e *Engine) RunWeekly(ctx context.Context) (*WeeklyReport, error) {
	snap := e.store.Load()

	weekAgo := e.clock.Now().AddDate(0, 0, -7).Format(time.RFC3339)

	report := &WeeklyReport{TotalEvents: len(snap.SentEvents)}
	for _, sentAt := range snap.SentEvents {
		if sentAt >= weekAgo {
			report.AlertsThisWeek++
		}
	}
	for _, info := range snap.SeenTasks {
		if info.LastSeen >= weekAgo {
			report.ActiveTasks++
		}
	}

	snap.Study.Streak.Decay(e.clock.Today())
	stats := snap.Study.WeekStats(e.clock.Today())

	embed := notify.WeeklyReportEmbed(
		e.clock.Local().Format("January 02, 2006"),
		report.TotalEvents, report.ActiveTasks, report.AlertsThisWeek,
		stats, snap.Study.Streak,
	)
	report.Posted = e.hooks.dailyBrief.Post(ctx, "", []notify.Embed{embed})

	e.store.UpdateLastRun("weekly_report", e.clock.Now())
	if err := e.store.Save(); err != nil {
		return report, err
	}

	log.Print("beacon: weekly report posted")
	return report, nil
}

// LogStudy records a study session for today and persists the result.
func (e *Engine) LogStudy(class string, minutes int) (tracker.Session, error) {
	snap := e.store.Load()
	session := snap.Study.LogSession(class, minutes, e.clock.Today(), e.clock.Now())
	return session, e.store.Save()
}

// StudyStreak returns the current streak, decaying it first if the last
// study day is too far back. A fired decay is persisted immediately.
func (e *Engine) StudyStreak() (tracker.Streak, error) {
	snap := e.store.Load()
	if snap.Study.Streak.Decay(e.clock.Today()) {
		if err := e.store.Save(); err != nil {
			return snap.Study.Streak, err
		}
	}
	return snap.Study.Streak, nil
}

// StudyStats returns the trailing week's study aggregates.
func (e *Engine) StudyStats() tracker.WeekStats {
	return e.store.Load().Study.WeekStats(e.clock.Today())
}

// StudyToday returns today's study minutes, session count, and classes.
func (e *Engine) StudyToday() tracker.TodaySummary {
	return e.store.Load().Study.TodaySummary(e.clock.Today())
}

// AddClass registers a class for study tracking.
func (e *Engine) AddClass(name string) (bool, error) {
	snap := e.store.Load()
	added := snap.Study.AddClass(name)
	if !added {
		return false, nil
	}
	return true, e.store.Save()
}

// RemoveClass unregisters a class.
func (e *Engine) RemoveClass(name string) (bool, error) {
	snap := e.store.Load()
	removed := snap.Study.RemoveClass(name)
	if !removed {
		return false, nil
	}
	return true, e.store.Save()
}

// NeglectedClasses returns tracked classes with no session in `days` days.
func (e *Engine) NeglectedClasses(days int) []string {
	return e.store.Load().Study.NeglectedClasses(e.clock.Today(), days)
}
