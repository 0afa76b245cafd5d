package jobs

import "strings"

// KeepListing applies the keyword allow/deny filter to one listing. An
// empty include list admits everything; any exclude keyword hit rejects.
// Matching is case-insensitive over title, description, and company.
func KeepListing(listing Listing, prefs Preferences) bool {
	text := strings.ToLower(listing.Title + " " + listing.Description + " " + listing.Company)

	if len(prefs.IncludeKeywords) > 0 {
		matched := false
		for _, kw := range prefs.IncludeKeywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, kw := range prefs.ExcludeKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}

	return true
}
