package ziputil

import (
	"io"

	"github.com/pkg/errors"
)

// Limits bounds one extraction. MaxBytes is cumulative over all entries;
// MaxRatio compares bytes written against an entry's declared compressed
// size and is only enforced when that size is known.
type Limits struct {
	MaxFiles int
	MaxBytes int64
	MaxRatio float64
}

func DefaultLimits() Limits {
	return Limits{
		MaxFiles: 1000,
		MaxBytes: 1_000_000_000,
		MaxRatio: 100.0,
	}
}

// boundedWriter wraps an entry's destination and checks the byte budget
// and compression ratio before every write, so an oversized entry is
// rejected mid-stream instead of after it was fully written.
type boundedWriter struct {
	w              io.Writer
	entry          string
	written        int64
	remaining      int64
	compressedSize int64
	maxRatio       float64
}

func (b *boundedWriter) Write(p []byte) (int, error) {
	n := int64(len(p))
	if b.written+n > b.remaining {
		return 0, &SafetyError{Entry: b.entry, Reason: ReasonTooManyBytes}
	}
	if b.compressedSize > 0 &&
		float64(b.written+n)/float64(b.compressedSize) > b.maxRatio {
		return 0, &SafetyError{Entry: b.entry, Reason: ReasonRatio}
	}

	m, err := b.w.Write(p)
	b.written += int64(m)
	if err != nil {
		return m, errors.WithStack(err)
	}
	return m, nil
}
