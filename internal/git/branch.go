// Package git provides the source-control collaborator for conductor.
// This file derives branch names and commit messages from task metadata.
package git

import (
	"strings"

	"github.com/mrz1836/conductor/internal/constants"
)

// BranchName derives a deterministic branch name from the ticket reference
// and the task title: the ticket followed by the first few words of the
// title, lower-cased and hyphen-joined. Characters outside [a-z0-9-] are
// dropped so the result is always a valid git ref component.
//
//	BranchName("PROJ-123", "Fix NPE in parser") == "proj-123-fix-npe-in"
func BranchName(ticket, title string) string {
	words := strings.Fields(strings.ToLower(title))
	if len(words) > constants.BranchTitleWords {
		words = words[:constants.BranchTitleWords]
	}

	parts := append([]string{strings.ToLower(ticket)}, words...)
	name := sanitizeRef(strings.Join(parts, "-"))
	return name
}

// CommitMessage derives the commit message for a task's delivery commit.
func CommitMessage(title string) string {
	return "dev: " + title
}

// sanitizeRef keeps only [a-z0-9-], dropping everything else and collapsing
// runs of hyphens.
func sanitizeRef(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
