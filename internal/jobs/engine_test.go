package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/llm"
)

type fakeScraper struct {
	board    Board
	listings []Listing
	err      error
}

func (f *fakeScraper) Name() string { return string(f.board) + " (fake)" }
func (f *fakeScraper) Board() Board { return f.board }
func (f *fakeScraper) Search(ctx context.Context, prefs Preferences, maxResults int) ([]Listing, error) {
	return f.listings, f.err
}

type fakeLetterClient struct {
	letter string
	err    error
}

func (f *fakeLetterClient) Optimize(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.letter, nil
}

func (f *fakeLetterClient) GenerateJSON(ctx context.Context, prompt, system string, tier llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLetterClient) Close() error { return nil }

func testEngine(client llm.Client, scrapers ...Scraper) *Engine {
	e := &Engine{
		scrapers: make(map[Board]Scraper),
		client:   client,
		sleep:    func(time.Duration) {},
	}
	for _, s := range scrapers {
		e.register(s)
	}
	return e
}

func TestSearch_FanOutScoreAndSort(t *testing.T) {
	prefs := basePrefs()

	strong := Listing{JobID: "a", Title: "Go Developer", Company: "Acme", Location: "London", JobType: "Full-time", ExperienceLevel: "Mid"}
	weak := Listing{JobID: "b", Title: "QA Analyst", Company: "Globex", Location: "Leeds"}

	e := testEngine(nil,
		&fakeScraper{board: BoardReed, listings: []Listing{weak}},
		&fakeScraper{board: BoardIndeed, listings: []Listing{strong}},
		&fakeScraper{board: BoardLinkedIn, err: &UnsupportedBoardError{Board: BoardLinkedIn}},
		&fakeScraper{board: BoardGlassdoor, err: errors.New("blocked")},
	)

	results, err := e.Search(context.Background(), prefs, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a", results[0].JobID, "highest match score first")
	assert.Greater(t, results[0].MatchScore, results[1].MatchScore)
}

func TestSearch_AppliesKeywordFilter(t *testing.T) {
	prefs := basePrefs()
	prefs.ExcludeKeywords = []string{"agency"}

	e := testEngine(nil, &fakeScraper{board: BoardReed, listings: []Listing{
		{JobID: "1", Title: "Go Developer", Company: "Acme", Location: "London"},
		{JobID: "2", Title: "Go Developer (agency)", Company: "Recruiters Inc", Location: "London"},
	}})

	results, err := e.Search(context.Background(), prefs, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	listings := make([]Listing, 5)
	for i := range listings {
		listings[i] = Listing{JobID: string(rune('a' + i)), Title: "Go Developer", Company: "C" + string(rune('a'+i)), Location: "London"}
	}
	e := testEngine(nil, &fakeScraper{board: BoardReed, listings: listings})

	results, err := e.Search(context.Background(), basePrefs(), 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestApply_DailyCapAndPacing(t *testing.T) {
	var delays []time.Duration
	e := testEngine(nil)
	e.sleep = func(d time.Duration) { delays = append(delays, d) }

	listings := []Listing{
		{JobID: "1", Title: "Go Developer", Company: "Acme", Board: BoardReed},
		{JobID: "2", Title: "Go Developer", Company: "Globex", Board: BoardReed},
		{JobID: "3", Title: "Go Developer", Company: "Initech", Board: BoardReed},
	}
	prefs := Preferences{MaxApplicationsPerDay: 2}

	apps, err := e.Apply(context.Background(), listings, prefs, "cv content", UserProfile{Name: "Jane"})
	require.NoError(t, err)

	assert.Len(t, apps, 2, "daily cap enforced")
	for _, app := range apps {
		assert.Equal(t, StatusApplied, app.Status)
		assert.Contains(t, app.ApplicationID, string(BoardReed))
		assert.Empty(t, app.CoverLetter, "no custom letters requested")
	}

	require.NotEmpty(t, delays)
	for _, d := range delays {
		assert.GreaterOrEqual(t, d, minApplyDelay)
		assert.Less(t, d, maxApplyDelay)
	}
}

func TestApply_RecordsCVVersion(t *testing.T) {
	e := testEngine(nil)
	listings := []Listing{{JobID: "1", Title: "Go Developer", Company: "Acme", Board: BoardReed}}
	prefs := Preferences{MaxApplicationsPerDay: 5}

	apps, err := e.Apply(context.Background(), listings, prefs, "cv:\n  name: Jane\n", UserProfile{})
	require.NoError(t, err)
	require.Len(t, apps, 1)

	// The tag is derived from the CV content, so the same CV yields the
	// same version and a different CV yields a different one.
	assert.Equal(t, cvVersionTag("cv:\n  name: Jane\n"), apps[0].CVVersion)

	other, err := e.Apply(context.Background(), listings, prefs, "cv:\n  name: John\n", UserProfile{})
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.NotEqual(t, apps[0].CVVersion, other[0].CVVersion)

	blank, err := e.Apply(context.Background(), listings, prefs, "", UserProfile{})
	require.NoError(t, err)
	require.Len(t, blank, 1)
	assert.Equal(t, "unversioned", blank[0].CVVersion)
}

func TestApply_CoverLetterFromClient(t *testing.T) {
	e := testEngine(&fakeLetterClient{letter: "Dear Acme, pick me."})

	apps, err := e.Apply(context.Background(),
		[]Listing{{JobID: "1", Title: "Go Developer", Company: "Acme", Board: BoardReed}},
		Preferences{CustomCoverLetter: true, MaxApplicationsPerDay: 5},
		"cv", UserProfile{Name: "Jane"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Dear Acme, pick me.", apps[0].CoverLetter)
}

func TestApply_CoverLetterFallsBackToTemplate(t *testing.T) {
	e := testEngine(&fakeLetterClient{err: errors.New("rate limited")})

	apps, err := e.Apply(context.Background(),
		[]Listing{{JobID: "1", Title: "Go Developer", Company: "Acme", Board: BoardReed}},
		Preferences{CustomCoverLetter: true, MaxApplicationsPerDay: 5},
		"cv", UserProfile{Name: "Jane", Skills: []string{"Go", "Postgres", "Kubernetes", "Terraform"}})
	require.NoError(t, err)
	require.Len(t, apps, 1)

	letter := apps[0].CoverLetter
	assert.Contains(t, letter, "Go Developer position at Acme")
	assert.Contains(t, letter, "Go, Postgres, Kubernetes")
	assert.NotContains(t, letter, "Terraform", "template uses at most three skills")
	assert.Contains(t, letter, "Kind regards,\nJane")
}

func TestNewEngineRegistersAllBoards(t *testing.T) {
	e := NewEngine(nil)
	for _, board := range AllBoards() {
		assert.Contains(t, e.scrapers, board)
	}
	assert.IsType(t, &ReedScraper{}, e.scrapers[BoardReed])
}
