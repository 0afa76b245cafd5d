package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ApplicationNotFoundError indicates an unknown application ID.
type ApplicationNotFoundError struct {
	ApplicationID string
}

func (e *ApplicationNotFoundError) Error() string {
	return fmt.Sprintf("application %s not found", e.ApplicationID)
}

// Tracker keeps the session's applications and derives analytics over
// them. In-memory only; nothing survives the session.
type Tracker struct {
	mu           sync.RWMutex
	applications []*Application
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add registers a new application.
func (t *Tracker) Add(app Application) {
	t.mu.Lock()
	t.applications = append(t.applications, &app)
	t.mu.Unlock()
}

// Filter narrows Applications queries. Zero values mean "no constraint".
type Filter struct {
	Status Status
	// Days limits results to applications submitted within the window.
	Days int
}

// Applications returns copies of the tracked applications matching the
// filter, in insertion order.
func (t *Tracker) Applications(f Filter) []Application {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var cutoff time.Time
	if f.Days > 0 {
		cutoff = time.Now().AddDate(0, 0, -f.Days)
	}

	var out []Application
	for _, app := range t.applications {
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		if f.Days > 0 && app.AppliedDate.Before(cutoff) {
			continue
		}
		out = append(out, *app)
	}
	return out
}

// UpdateStatus transitions an application and appends a dated note. Notes
// are never overwritten.
func (t *Tracker) UpdateStatus(applicationID string, status Status, note string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, app := range t.applications {
		if app.ApplicationID != applicationID {
			continue
		}
		app.Status = status
		if note != "" {
			app.Notes += fmt.Sprintf("\n%s: %s", time.Now().Format("2006-01-02"), note)
		}
		if status == StatusViewed || status == StatusInterview || status == StatusRejected || status == StatusOffer {
			app.ResponseReceived = true
		}
		return nil
	}
	return &ApplicationNotFoundError{ApplicationID: applicationID}
}

// CompanyCount pairs a company with its application count.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Analytics summarizes tracked applications.
type Analytics struct {
	TotalApplications  int            `json:"total_applications"`
	ResponseRate       float64        `json:"response_rate"`
	InterviewRate      float64        `json:"interview_rate"`
	StatusBreakdown    map[string]int `json:"status_breakdown"`
	TopCompanies       []CompanyCount `json:"top_companies"`
	ApplicationsByDate map[string]int `json:"applications_by_date"`
}

// Analytics computes rates and breakdowns. Rates are percentages.
func (t *Tracker) Analytics() Analytics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := len(t.applications)
	if total == 0 {
		return Analytics{
			StatusBreakdown:    map[string]int{},
			ApplicationsByDate: map[string]int{},
		}
	}

	responses, interviews := 0, 0
	breakdown := make(map[string]int)
	companies := make(map[string]int)
	byDate := make(map[string]int)

	for _, app := range t.applications {
		if app.ResponseReceived {
			responses++
		}
		if app.Status == StatusInterview {
			interviews++
		}
		breakdown[string(app.Status)]++
		companies[app.Job.Company]++
		byDate[app.AppliedDate.Format("2006-01-02")]++
	}

	top := make([]CompanyCount, 0, len(companies))
	for company, count := range companies {
		top = append(top, CompanyCount{Company: company, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Company < top[j].Company
	})
	if len(top) > 10 {
		top = top[:10]
	}

	return Analytics{
		TotalApplications:  total,
		ResponseRate:       float64(responses) / float64(total) * 100,
		InterviewRate:      float64(interviews) / float64(total) * 100,
		StatusBreakdown:    breakdown,
		TopCompanies:       top,
		ApplicationsByDate: byDate,
	}
}
