package csvio

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// WriteModeTruncate and WriteModeAppend select how NewFileWriter opens
// an existing file.
const (
	WriteModeTruncate = "w"
	WriteModeAppend   = "a"
)

// Writer emits formatted, delimited rows to a character sink. It owns
// the sink it was constructed with and closes it on Close. A Writer must
// not be used from multiple goroutines.
type Writer struct {
	cfg        Config
	bw         *bufio.Writer
	closers    []io.Closer
	fmtr       *valueFormatter
	fieldCount int
	rowNum     int
}

// NewWriter creates a Writer over w. If w implements io.Closer it is
// closed when the Writer is closed.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	cw, err := newWriter(w, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := w.(io.Closer); ok {
		cw.closers = append(cw.closers, c)
	}
	return cw, nil
}

// NewFileWriter creates a Writer for the named file. Files with a .gz or
// .gzip extension are compressed transparently.
func NewFileWriter(filename, writeMode string, cfg Config) (*Writer, error) {
	flags := 0
	switch writeMode {
	case WriteModeTruncate:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	fw, err := os.OpenFile(filename, flags, 0644)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var sink io.Writer = fw
	closers := []io.Closer{fw}
	ext := filepath.Ext(filename)
	if ext == ".gz" || ext == ".gzip" {
		zw := gzip.NewWriter(fw)
		sink = zw
		closers = []io.Closer{zw, fw}
	}

	cw, err := newWriter(sink, cfg)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}
	cw.closers = append(cw.closers, closers...)
	return cw, nil
}

func newWriter(w io.Writer, cfg Config) (*Writer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cw := new(Writer)
	cw.cfg = cfg

	enc := strings.ToLower(cfg.Encoding)
	if enc != "" && enc != "utf-8" && enc != "utf8" {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, errors.New("unknown encoding " + cfg.Encoding)
		}
		tw := transform.NewWriter(w, e.NewEncoder())
		cw.closers = append(cw.closers, tw)
		w = tw
	}

	cw.bw = bufio.NewWriter(w)
	cw.fmtr = newValueFormatter(&cfg)
	return cw, nil
}

// WriteValue appends one field to the current row. The value is
// formatted according to the configuration and quoted when needed.
func (w *Writer) WriteValue(v interface{}) error {
	if w.fieldCount > 0 {
		if _, err := w.bw.WriteRune(w.cfg.Separator); err != nil {
			return errors.WithStack(err)
		}
	}

	s := w.fmtr.format(v)
	if w.needsQuoting(s) {
		s = w.quote(s)
	}
	if _, err := w.bw.WriteString(s); err != nil {
		return errors.WithStack(err)
	}
	w.fieldCount++
	return nil
}

// NextRow terminates the current row with CRLF.
func (w *Writer) NextRow() error {
	if _, err := w.bw.WriteString(cLineDelimiter); err != nil {
		return errors.WithStack(err)
	}
	w.fieldCount = 0
	w.rowNum++
	return nil
}

// WriteRow writes all values as one row and terminates it.
func (w *Writer) WriteRow(values ...interface{}) error {
	for _, v := range values {
		if err := w.WriteValue(v); err != nil {
			return err
		}
	}
	return w.NextRow()
}

// Row returns the number of rows terminated so far.
func (w *Writer) Row() int {
	return w.rowNum
}

// Flush drains the row buffer to the sink. With a non-UTF-8 encoding
// the transform layer may hold back an incomplete character sequence
// until Close, so encoded output is only complete after Close.
func (w *Writer) Flush() error {
	return errors.WithStack(w.bw.Flush())
}

// Close terminates a pending partial row, flushes the buffer and closes
// the underlying sink.
func (w *Writer) Close() error {
	var firstErr error
	if w.fieldCount > 0 {
		firstErr = w.NextRow()
	}
	if err := w.bw.Flush(); err != nil && firstErr == nil {
		firstErr = errors.WithStack(err)
	}
	for _, c := range w.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = errors.WithStack(err)
		}
	}
	w.closers = nil
	return firstErr
}

func (w *Writer) needsQuoting(s string) bool {
	for _, r := range s {
		if r == w.cfg.Separator || r == w.cfg.Delimiter {
			return true
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		if !strings.ContainsRune(cQuoteFreeChars, r) {
			return true
		}
	}
	return false
}

func (w *Writer) quote(s string) string {
	del := string(w.cfg.Delimiter)
	return del + strings.ReplaceAll(s, del, del+del) + del
}
