package jobs

import "strings"

// Match score weights. An excluded company outweighs any two positive
// signals.
const (
	weightTitle            = 0.3
	weightLocation         = 0.2
	weightRemote           = 0.2
	weightJobType          = 0.1
	weightExperience       = 0.1
	penaltyExcludedCompany = 0.5
)

// MatchScore rates how well a listing fits the preferences, clamped to
// [0, 1]. Each dimension contributes at most once.
func MatchScore(listing Listing, prefs Preferences) float64 {
	score := 0.0

	titleLower := strings.ToLower(listing.Title)
	for _, role := range prefs.TargetRoles {
		if strings.Contains(titleLower, strings.ToLower(role)) {
			score += weightTitle
			break
		}
	}

	locationLower := strings.ToLower(listing.Location)
	for _, location := range prefs.Locations {
		if strings.Contains(locationLower, strings.ToLower(location)) {
			score += weightLocation
			break
		}
	}

	if prefs.RemoteOnly && listing.RemoteOption {
		score += weightRemote
	}

	for _, jobType := range prefs.JobTypes {
		if listing.JobType == jobType {
			score += weightJobType
			break
		}
	}

	for _, level := range prefs.ExperienceLevels {
		if listing.ExperienceLevel == level {
			score += weightExperience
			break
		}
	}

	companyLower := strings.ToLower(listing.Company)
	for _, excluded := range prefs.ExcludeCompanies {
		if companyLower == strings.ToLower(excluded) {
			score -= penaltyExcludedCompany
			break
		}
	}

	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}
