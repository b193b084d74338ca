package analysis

import (
	"fmt"
	"strings"
)

const (
	MSG_INVALID_LIST   = "invalid article list format: the request body must be a non-empty JSON list"
	MSG_MISSING_FIELDS = "article data is missing required fields"
	MSG_INVALID_FIELDS = "article data has fields of the wrong type"
	MSG_INTERNAL       = "internal analysis error; check the server logs for details"
)

// StructuralError means the request body is not a list of articles.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return MSG_INVALID_LIST
}

// ValidationError reports the first article (by index) that cannot be
// analysed. The whole batch is rejected.
type ValidationError struct {
	Index         int
	MissingFields []string
	InvalidFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return MSG_MISSING_FIELDS
	}
	return MSG_INVALID_FIELDS
}

func (e *ValidationError) Detail() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.InvalidFields, ", "))
	}
	return fmt.Sprintf("article %d: %s", e.Index, strings.Join(parts, "; "))
}

// ClassificationError wraps a classifier failure for one article. Its detail
// is for logs only.
type ClassificationError struct {
	Index int
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for article %d: %v", e.Index, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
