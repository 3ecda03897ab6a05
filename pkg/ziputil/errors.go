package ziputil

import "fmt"

const (
	ReasonPathEscape   = "path escapes destination"
	ReasonSymlink      = "refusing to overwrite symbolic link"
	ReasonTooManyFiles = "too many entries"
	ReasonTooManyBytes = "uncompressed byte limit exceeded"
	ReasonRatio        = "compression ratio limit exceeded"
)

// SafetyError reports a rejected archive entry. Extraction aborts as a
// whole; entries already extracted stay on disk.
type SafetyError struct {
	Entry  string
	Reason string
}

func (e *SafetyError) Error() string {
	return fmt.Sprintf("unsafe zip entry %q: %s", e.Entry, e.Reason)
}
