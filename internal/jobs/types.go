// Package jobs implements the job-search automation side module: board
// scrapers, preference matching, simulated applications, and the
// application tracker. Everything here is session-scoped and in-memory.
package jobs

import "time"

// Board identifies a supported job board.
type Board string

const (
	BoardLinkedIn  Board = "linkedin"
	BoardIndeed    Board = "indeed"
	BoardReed      Board = "reed"
	BoardTotalJobs Board = "totaljobs"
	BoardGlassdoor Board = "glassdoor"
	BoardJobsite   Board = "jobsite"
)

// AllBoards returns the supported boards in display order.
func AllBoards() []Board {
	return []Board{BoardLinkedIn, BoardIndeed, BoardReed, BoardTotalJobs, BoardGlassdoor, BoardJobsite}
}

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApplied   Status = "applied"
	StatusViewed    Status = "viewed"
	StatusInterview Status = "interview"
	StatusRejected  Status = "rejected"
	StatusOffer     Status = "offer"
	StatusWithdrawn Status = "withdrawn"
)

// Listing is one scraped job posting. Immutable once produced; the ID is
// scoped to the board it came from.
type Listing struct {
	JobID               string     `json:"job_id"`
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Location            string     `json:"location"`
	Salary              string     `json:"salary,omitempty"`
	Description         string     `json:"description"`
	Requirements        []string   `json:"requirements"`
	URL                 string     `json:"url"`
	Board               Board      `json:"job_board"`
	PostedDate          time.Time  `json:"posted_date"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	JobType             string     `json:"job_type"`
	ExperienceLevel     string     `json:"experience_level"`
	RemoteOption        bool       `json:"remote_option"`
	MatchScore          float64    `json:"match_score"`
}

// Application tracks one submitted application. The listing is captured by
// value; later mutations of scraped data never reach it.
type Application struct {
	ApplicationID      string      `json:"application_id"`
	Job                Listing     `json:"job"`
	AppliedDate        time.Time   `json:"applied_date"`
	Status             Status      `json:"status"`
	CVVersion          string      `json:"cv_version"`
	CoverLetter        string      `json:"cover_letter,omitempty"`
	FollowUpDates      []time.Time `json:"follow_up_dates"`
	Notes              string      `json:"notes"`
	ResponseReceived   bool        `json:"response_received"`
	InterviewScheduled *time.Time  `json:"interview_scheduled,omitempty"`
}

// Preferences holds the user's search and automation settings.
type Preferences struct {
	TargetRoles          []string `json:"target_roles"`
	Locations            []string `json:"locations"`
	SalaryMin            int      `json:"salary_min,omitempty"`
	SalaryMax            int      `json:"salary_max,omitempty"`
	JobTypes             []string `json:"job_types"`
	ExperienceLevels     []string `json:"experience_levels"`
	RemoteOnly           bool     `json:"remote_only"`
	ExcludeCompanies     []string `json:"exclude_companies"`
	IncludeKeywords      []string `json:"include_keywords"`
	ExcludeKeywords      []string `json:"exclude_keywords"`
	MaxApplicationsPerDay int     `json:"max_applications_per_day"`
	CustomCoverLetter    bool     `json:"custom_cover_letter"`
}

// UserProfile is the candidate information used for cover letters.
type UserProfile struct {
	Name              string   `json:"name"`
	ExperienceSummary string   `json:"experience_summary"`
	Skills            []string `json:"skills"`
}
