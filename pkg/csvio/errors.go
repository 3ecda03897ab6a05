package csvio

import "fmt"

// FormatError reports a structural violation of the CSV syntax. Line is
// 1-based and counts physical lines, including lines consumed by quoted
// fields with embedded newlines. Source is the file path when known.
type FormatError struct {
	Source string
	Line   int
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("csv format error in %s at line %d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("csv format error at line %d: %s", e.Line, e.Msg)
}
