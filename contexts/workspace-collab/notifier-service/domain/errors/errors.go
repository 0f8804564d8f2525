package errors

import "errors"

var (
	ErrInvalidEvent = errors.New("invalid event payload")

	// Benign lookups: the subject was deleted between event emission and
	// processing. Workflows stop silently on these.
	ErrDocumentNotFound   = errors.New("document not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrTeamNotFound       = errors.New("team not found")
)

// IsBenignNotFound reports whether err is one of the primary-subject
// not-found errors that terminate a workflow without failing it.
func IsBenignNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrTeamNotFound)
}
