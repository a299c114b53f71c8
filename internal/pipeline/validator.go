package pipeline

import (
	"errors"
	"regexp"
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
)

// ErrNoValidRows is the single fatal post-parse condition: every row was
// filtered out by validation.
var ErrNoValidRows = errors.New("no valid audit data found")

// minDescriptionLength is the trimmed length a description must exceed to
// count as meaningful content.
const minDescriptionLength = 10

var placeholderTitle = regexp.MustCompile(`^Audit Item \d+$`)

// validateDraft reports whether a draft carries enough real content to be
// worth persisting. Synthesized placeholder titles and near-empty
// descriptions indicate a row with no usable data.
func validateDraft(draft domain.TicketDraft) bool {
	title := strings.TrimSpace(draft.Title)
	if title == "" || placeholderTitle.MatchString(title) {
		return false
	}
	return len(strings.TrimSpace(draft.Description)) > minDescriptionLength
}
