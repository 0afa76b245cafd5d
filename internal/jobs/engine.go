package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-tailor/internal/llm"
)

// Pacing bounds for the delay between consecutive applications. The
// jitter is a politeness policy toward the boards, not a correctness
// mechanism.
const (
	minApplyDelay = 30 * time.Second
	maxApplyDelay = 120 * time.Second
)

// Engine coordinates scraping, matching, and simulated applications.
type Engine struct {
	scrapers map[Board]Scraper
	client   llm.Client

	sleep func(time.Duration)

	mu                sync.Mutex
	applicationsToday int
	lastApplyDay      time.Time
}

// NewEngine builds an engine with the default scraper set. client may be
// nil; cover letters then always use the template fallback.
func NewEngine(client llm.Client) *Engine {
	e := &Engine{
		scrapers: make(map[Board]Scraper),
		client:   client,
		sleep:    time.Sleep,
	}
	e.register(NewReedScraper())
	for _, board := range []Board{BoardLinkedIn, BoardIndeed, BoardTotalJobs, BoardGlassdoor, BoardJobsite} {
		e.register(&stubScraper{board: board})
	}
	return e
}

func (e *Engine) register(s Scraper) {
	e.scrapers[s.Board()] = s
}

// Search fans out across all registered scrapers, scores and filters the
// results, and returns them deduplicated and sorted by match score
// descending. Individual scraper failures are logged and skipped; search
// is best-effort across boards.
func (e *Engine) Search(ctx context.Context, prefs Preferences, maxResults int) ([]Listing, error) {
	var mu sync.Mutex
	var all []Listing

	g, gctx := errgroup.WithContext(ctx)
	for _, scraper := range e.scrapers {
		scraper := scraper
		g.Go(func() error {
			found, err := scraper.Search(gctx, prefs, maxResults)
			if err != nil {
				var unsupported *UnsupportedBoardError
				if !errors.As(err, &unsupported) {
					log.Printf("scraper %s failed: %v", scraper.Name(), err)
				}
				return nil
			}
			mu.Lock()
			all = append(all, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var kept []Listing
	for _, listing := range all {
		if !KeepListing(listing, prefs) {
			continue
		}
		listing.MatchScore = MatchScore(listing, prefs)
		kept = append(kept, listing)
	}

	kept = Deduplicate(kept)
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].MatchScore > kept[j].MatchScore
	})

	if len(kept) > maxResults {
		kept = kept[:maxResults]
	}
	return kept, nil
}

// Deduplicate drops listings sharing (title, company, location), keeping
// the first occurrence.
func Deduplicate(listings []Listing) []Listing {
	seen := make(map[string]bool, len(listings))
	var unique []Listing
	for _, listing := range listings {
		signature := strings.ToLower(listing.Title + "-" + listing.Company + "-" + listing.Location)
		if seen[signature] {
			continue
		}
		seen[signature] = true
		unique = append(unique, listing)
	}
	return unique
}

// Apply submits applications for the given listings, stopping at the daily
// cap. A jittered pause separates consecutive applications. Listings that
// fail to apply are skipped, not fatal. Each application records the CV it
// was submitted with via a content-derived version tag.
func (e *Engine) Apply(ctx context.Context, listings []Listing, prefs Preferences, cvContent string, profile UserProfile) ([]Application, error) {
	var applications []Application
	cvVersion := cvVersionTag(cvContent)

	for i, listing := range listings {
		if !e.underDailyCap(prefs.MaxApplicationsPerDay) {
			log.Printf("daily application limit of %d reached", prefs.MaxApplicationsPerDay)
			break
		}
		if ctx.Err() != nil {
			return applications, ctx.Err()
		}

		coverLetter := ""
		if prefs.CustomCoverLetter {
			coverLetter = e.coverLetter(ctx, listing, profile)
		}

		applications = append(applications, Application{
			ApplicationID: fmt.Sprintf("%s_%s_%d", listing.Board, listing.JobID, time.Now().Unix()),
			Job:           listing,
			AppliedDate:   time.Now(),
			Status:        StatusApplied,
			CVVersion:     cvVersion,
			CoverLetter:   coverLetter,
			FollowUpDates: []time.Time{},
		})
		e.countApplication()

		if i < len(listings)-1 {
			e.sleep(applyDelay())
		}
	}

	return applications, nil
}

// cvVersionTag identifies which CV a batch of applications was submitted
// with. The content digest lets the tracker tie an application back to the
// exact CV text without storing it on every row.
func cvVersionTag(cvContent string) string {
	if strings.TrimSpace(cvContent) == "" {
		return "unversioned"
	}
	sum := sha256.Sum256([]byte(cvContent))
	return "cv_" + hex.EncodeToString(sum[:4])
}

// applyDelay returns a uniform random pause in [minApplyDelay, maxApplyDelay].
func applyDelay() time.Duration {
	spread := maxApplyDelay - minApplyDelay
	return minApplyDelay + time.Duration(rand.Int63n(int64(spread)))
}

// underDailyCap reports whether another application may be submitted
// today. The counter resets on day rollover.
func (e *Engine) underDailyCap(limit int) bool {
	if limit <= 0 {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	today := time.Now().Truncate(24 * time.Hour)
	if !e.lastApplyDay.Equal(today) {
		e.lastApplyDay = today
		e.applicationsToday = 0
	}
	return e.applicationsToday < limit
}

func (e *Engine) countApplication() {
	e.mu.Lock()
	e.applicationsToday++
	e.mu.Unlock()
}
