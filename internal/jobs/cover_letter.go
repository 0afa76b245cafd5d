package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// coverLetterMaxTokens bounds the generated letter; three paragraphs fit
// well under this.
const coverLetterMaxTokens = 500

// coverLetter generates a letter for one listing, falling back to the
// template when no client is configured or the call fails.
func (e *Engine) coverLetter(ctx context.Context, listing Listing, profile UserProfile) string {
	if e.client == nil {
		return templateCoverLetter(listing, profile)
	}

	letter, err := e.client.Optimize(ctx, coverLetterPrompt(listing, profile), coverLetterMaxTokens)
	if err != nil {
		log.Printf("cover letter generation failed for %s at %s, using template: %v", listing.Title, listing.Company, err)
		return templateCoverLetter(listing, profile)
	}
	return letter
}

func coverLetterPrompt(listing Listing, profile UserProfile) string {
	description := listing.Description
	if len(description) > 500 {
		description = description[:500] + "..."
	}

	return fmt.Sprintf(`Write a professional cover letter for this job application:

Job Title: %s
Company: %s
Job Description: %s

Candidate:
Name: %s
Experience: %s
Skills: %s

Make it:
- Professional but personalized
- Specific to the role and company
- Highlighting relevant experience
- Maximum 3 paragraphs
- UK business format`,
		listing.Title, listing.Company, description,
		profile.Name, profile.ExperienceSummary, strings.Join(profile.Skills, ", "))
}

// templateCoverLetter is the deterministic fallback letter.
func templateCoverLetter(listing Listing, profile UserProfile) string {
	name := profile.Name
	if name == "" {
		name = "Your Name"
	}
	experience := profile.ExperienceSummary
	if experience == "" {
		experience = "relevant experience"
	}
	skills := profile.Skills
	if len(skills) > 3 {
		skills = skills[:3]
	}

	return fmt.Sprintf(`Dear Hiring Manager,

I am writing to express my strong interest in the %s position at %s. With my background in %s, I am confident I would be a valuable addition to your team.

My skills in %s align well with your requirements. I am particularly excited about the opportunity to contribute to %s's continued success.

Thank you for considering my application. I look forward to discussing how I can contribute to your team.

Kind regards,
%s`, listing.Title, listing.Company, experience, strings.Join(skills, ", "), listing.Company, name)
}
