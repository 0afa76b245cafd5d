package jobs

import (
	"context"
	"fmt"
)

// Scraper fetches listings from one job board.
type Scraper interface {
	// Name is a human-readable scraper name.
	Name() string
	// Board is the board this scraper serves.
	Board() Board
	// Search returns up to maxResults listings matching the preferences.
	Search(ctx context.Context, prefs Preferences, maxResults int) ([]Listing, error)
}

// UnsupportedBoardError indicates a board with no working scraper behind
// it. Search treats it as an empty result, not a failure.
type UnsupportedBoardError struct {
	Board Board
}

func (e *UnsupportedBoardError) Error() string {
	return fmt.Sprintf("no scraper implemented for board %s", e.Board)
}

// stubScraper registers a board whose scraping is not implemented. The
// boards stay visible in the UI and the engine skips them cleanly.
type stubScraper struct {
	board Board
}

func (s *stubScraper) Name() string { return string(s.board) + " (stub)" }

func (s *stubScraper) Board() Board { return s.board }

func (s *stubScraper) Search(ctx context.Context, prefs Preferences, maxResults int) ([]Listing, error) {
	return nil, &UnsupportedBoardError{Board: s.board}
}
