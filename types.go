package beacon

// SyncReport summarizes one sync-and-alert run.
type SyncReport struct {
	CoursesSynced       int      `json:"courses_synced"`
	TasksSynced         int      `json:"tasks_synced"`
	AnnouncementsSynced int      `json:"announcements_synced"`
	DeadlinesMoved      int      `json:"deadlines_moved_earlier"`
	AlertsPosted        int      `json:"alerts_posted"`
	StudyPlanPosted     bool     `json:"study_plan_posted"`
	Errors              []string `json:"errors,omitempty"`
}

// BriefReport summarizes one daily brief run.
type BriefReport struct {
	Today          int  `json:"today"`
	Tomorrow       int  `json:"tomorrow"`
	ThisWeek       int  `json:"this_week"`
	CalendarEvents int  `json:"calendar_events"`
	Posted         bool `json:"posted"`
}

// NewsReport summarizes one news polling run.
type NewsReport struct {
	ItemsFetched   int `json:"items_fetched"`
	ItemsPosted    int `json:"items_posted"`
	EarningsPosted int `json:"earnings_posted"`
	MacroPosted    int `json:"macro_posted"`
	PromptsPosted  int `json:"prompts_posted"`
}

// WeeklyReport summarizes one weekly report run.
type WeeklyReport struct {
	TotalEvents    int  `json:"total_events"`
	ActiveTasks    int  `json:"active_tasks"`
	AlertsThisWeek int  `json:"alerts_this_week"`
	Posted         bool `json:"posted"`
}
