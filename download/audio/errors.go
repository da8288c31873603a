package audio

import (
	"fmt"
	"strings"
)

// NoMatchError means every query variant was exhausted without a usable file
// appearing in the scratch directory. The owning task fails; the batch does
// not.
type NoMatchError struct {
	Title   string
	Queries []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match for %q after %d queries (%s)", e.Title, len(e.Queries), strings.Join(e.Queries, "; "))
}

// ToolError represents a failed invocation of the external search/fetch tool.
type ToolError struct {
	Message  string
	Original error
}

func (e *ToolError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("fetch tool error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("fetch tool error: %s", e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Original
}
