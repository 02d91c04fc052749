package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBranchName(t *testing.T) {
	tests := []struct {
		name   string
		ticket string
		title  string
		want   string
	}{
		{
			name:   "ticket plus first three words",
			ticket: "PROJ-123",
			title:  "Fix NPE in parser module",
			want:   "proj-123-fix-npe-in",
		},
		{
			name:   "short title",
			ticket: "OPS-7",
			title:  "Rotate keys",
			want:   "ops-7-rotate-keys",
		},
		{
			name:   "punctuation stripped",
			ticket: "BUG-42",
			title:  "Don't crash (again!)",
			want:   "bug-42-dont-crash-again",
		},
		{
			name:   "empty title",
			ticket: "PROJ-1",
			title:  "",
			want:   "proj-1",
		},
		{
			name:   "whitespace-heavy title",
			ticket: "X-1",
			title:  "  lots   of   spaces here  ",
			want:   "x-1-lots-of-spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BranchName(tt.ticket, tt.title))
		})
	}
}

func TestBranchName_Deterministic(t *testing.T) {
	a := BranchName("PROJ-9", "Implement retry logic everywhere")
	b := BranchName("PROJ-9", "Implement retry logic everywhere")
	assert.Equal(t, a, b)
}

func TestCommitMessage(t *testing.T) {
	assert.Equal(t, "dev: Add health endpoint", CommitMessage("Add health endpoint"))
}
