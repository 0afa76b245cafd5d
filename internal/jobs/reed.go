package jobs

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/cv-tailor/internal/fetch"
)

const reedBaseURL = "https://www.reed.co.uk"

// ReedScraper scrapes reed.co.uk search result pages.
type ReedScraper struct {
	opts *fetch.Options
}

// NewReedScraper creates a Reed scraper with default fetch options.
func NewReedScraper() *ReedScraper {
	return &ReedScraper{opts: fetch.DefaultOptions()}
}

func (s *ReedScraper) Name() string { return "Reed" }

func (s *ReedScraper) Board() Board { return BoardReed }

// Search fetches one results page per (role, location) pair, capped at the
// first two of each to keep request volume polite.
func (s *ReedScraper) Search(ctx context.Context, prefs Preferences, maxResults int) ([]Listing, error) {
	roles := prefs.TargetRoles
	if len(roles) > 2 {
		roles = roles[:2]
	}
	locations := prefs.Locations
	if len(locations) > 2 {
		locations = locations[:2]
	}
	if len(roles) == 0 || len(locations) == 0 {
		return nil, nil
	}

	perQuery := maxResults / (len(roles) * len(locations))
	if perQuery < 1 {
		perQuery = 1
	}

	var listings []Listing
	var lastErr error
	for _, role := range roles {
		for _, location := range locations {
			url := searchURL(role, location)
			result, err := fetch.URL(ctx, url, s.opts)
			if err != nil {
				lastErr = err
				continue
			}
			found, err := parseReedResults(result.HTML, perQuery)
			if err != nil {
				lastErr = err
				continue
			}
			listings = append(listings, found...)
		}
	}

	if len(listings) == 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(listings) > maxResults {
		listings = listings[:maxResults]
	}
	return listings, nil
}

// searchURL builds a Reed search results URL, e.g.
// /jobs/go-developer-jobs-in-london.
func searchURL(role, location string) string {
	slug := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	}
	return fmt.Sprintf("%s/jobs/%s-jobs-in-%s", reedBaseURL, slug(role), slug(location))
}

// parseReedResults extracts listings from a results page. The primary path
// reads the structured job-result cards; when the markup has shifted and no
// cards match, a looser pass over job links recovers what it can.
func parseReedResults(html string, maxResults int) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Reed results: %w", err)
	}

	var listings []Listing
	doc.Find("article.job-result").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if listing, ok := extractReedCard(card); ok {
			listings = append(listings, listing)
		}
		return len(listings) < maxResults
	})

	if len(listings) == 0 {
		listings = extractReedLinks(doc, maxResults)
	}
	return listings, nil
}

// extractReedCard reads one structured result card. Title, company, and
// location are all required; a card missing any of them is skipped.
func extractReedCard(card *goquery.Selection) (Listing, bool) {
	titleElem := card.Find("h3.title").First()
	company := strings.TrimSpace(card.Find("a.gtmJobListingPostedBy").First().Text())
	location := strings.TrimSpace(card.Find("li.location").First().Text())
	title := strings.TrimSpace(titleElem.Text())

	if title == "" || company == "" || location == "" {
		return Listing{}, false
	}

	url, _ := titleElem.Find("a").First().Attr("href")
	url = absoluteReedURL(url)

	return Listing{
		JobID:           reedJobID(url, title, company),
		Title:           title,
		Company:         company,
		Location:        location,
		Salary:          strings.TrimSpace(card.Find("li.salary").First().Text()),
		Requirements:    []string{},
		URL:             url,
		Board:           BoardReed,
		PostedDate:      time.Now(),
		JobType:         "Full-time",
		ExperienceLevel: "Mid",
		RemoteOption:    strings.Contains(strings.ToLower(location), "remote"),
	}, true
}

// extractReedLinks is the fallback heuristic: walk job-detail links and
// read the title from the link text and the company from the first
// following line of the surrounding block.
func extractReedLinks(doc *goquery.Document, maxResults int) []Listing {
	var listings []Listing
	seen := make(map[string]bool)

	doc.Find("a[href*='/jobs/']").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" || seen[href] {
			return true
		}

		lines := strings.Split(strings.TrimSpace(link.Parent().Text()), "\n")
		company := ""
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line != "" && line != title {
				company = line
				break
			}
		}
		if company == "" {
			return true
		}

		seen[href] = true
		url := absoluteReedURL(href)
		listings = append(listings, Listing{
			JobID:           reedJobID(url, title, company),
			Title:           title,
			Company:         company,
			Requirements:    []string{},
			URL:             url,
			Board:           BoardReed,
			PostedDate:      time.Now(),
			JobType:         "Full-time",
			ExperienceLevel: "Mid",
		})
		return len(listings) < maxResults
	})

	return listings
}

func absoluteReedURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return reedBaseURL + href
}

// reedJobID derives the board-scoped ID: the last URL path segment, or a
// hash of title and company when the URL is missing.
func reedJobID(url, title, company string) string {
	if url != "" {
		parts := strings.Split(strings.TrimRight(url, "/"), "/")
		if last := parts[len(parts)-1]; last != "" {
			return last
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(title + company))
	return fmt.Sprintf("%x", h.Sum32())
}
