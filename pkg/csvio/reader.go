package csvio

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Reader tokenizes rows from a character stream. It owns the stream it
// was constructed with and closes it on Close. A Reader must not be used
// from multiple goroutines.
type Reader struct {
	cfg         Config
	br          *bufio.Reader
	closers     []io.Closer
	pattern     *fieldPattern
	source      string
	columnNames []string
	lineNum     int
	rowNum      int
	totalRows   int
}

// NewReader creates a Reader over rd. A UTF-8 byte-order mark at the
// start of the stream is discarded and forces UTF-8 decoding, overriding
// the configured encoding. If rd implements io.Closer it is closed when
// the Reader is closed.
func NewReader(rd io.Reader, cfg Config) (*Reader, error) {
	r, err := newReader(rd, cfg, "")
	if err != nil {
		return nil, err
	}
	if c, ok := rd.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}
	return r, nil
}

// NewFileReader creates a Reader for the named file. Files with a .gz or
// .gzip extension are decompressed transparently.
func NewFileReader(filename string, cfg Config) (*Reader, error) {
	fr, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var src io.Reader = fr
	closers := []io.Closer{fr}
	ext := filepath.Ext(filename)
	if ext == ".gz" || ext == ".gzip" {
		zr, err := gzip.NewReader(fr)
		if err != nil {
			fr.Close()
			return nil, errors.WithStack(err)
		}
		src = zr
		closers = []io.Closer{zr, fr}
	}

	r, err := newReader(src, cfg, filename)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}
	r.closers = closers
	return r, nil
}

func newReader(rd io.Reader, cfg Config, source string) (*Reader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	br := bufio.NewReader(rd)
	enc := strings.ToLower(cfg.Encoding)
	if b, _ := br.Peek(3); bytes.Equal(b, utf8Bom) {
		br.Discard(3)
		enc = cDefaultEncoding
	}

	if enc != "" && enc != "utf-8" && enc != "utf8" {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, errors.New("unknown encoding " + cfg.Encoding)
		}
		br = bufio.NewReader(transform.NewReader(br, e.NewDecoder()))
	}

	pattern, err := newFieldPattern(cfg.Separator, cfg.Delimiter)
	if err != nil {
		return nil, err
	}

	r := new(Reader)
	r.cfg = cfg
	r.br = br
	r.pattern = pattern
	r.source = source
	return r, nil
}

// ReadRow tokenizes the next logical row and feeds its fields to b. It
// returns the number of fields read, or io.EOF when no more rows are
// available. A malformed row yields a *FormatError; the stream stays
// open so the caller decides whether to continue.
func (r *Reader) ReadRow(b RowBuilder) (int, error) {
	buf, ok, err := r.readLine()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.EOF
	}
	r.lineNum++

	b.StartRow()
	offset := 0
	count := 0
	for {
		m, ok := r.pattern.match(buf, offset)
		if !ok {
			return count, r.formatErr(cErrInvalidData)
		}

		if m.kind == matchOpenQuote {
			next, ok, err := r.readLine()
			if err != nil {
				return count, err
			}
			if !ok {
				return count, r.formatErr(cErrUnexpectedEnd)
			}
			r.lineNum++
			buf = m.value + "\n" + next
			offset = 0
			continue
		}

		if m.kind == matchQuoted {
			b.Add(r.pattern.unescape(m.value))
		} else {
			b.Add(m.value)
		}
		count++

		offset += m.length
		if !m.sepEnd {
			break
		}
	}

	if r.columnNames != nil {
		if count < len(r.columnNames) && !r.cfg.IgnoreMissingFields {
			return count, r.formatErr(cErrNotEnoughFields)
		}
		if count > len(r.columnNames) && !r.cfg.IgnoreExcessFields {
			return count, r.formatErr(cErrTooManyFields)
		}
	}

	r.rowNum++
	r.totalRows++
	b.EndRow()
	return count, nil
}

// ReadColumnNames consumes one row through the normal tokenizer and
// records its fields as the expected column names for subsequent rows.
func (r *Reader) ReadColumnNames() ([]string, error) {
	b := NewSliceRowBuilder()
	if _, err := r.ReadRow(b); err != nil {
		return nil, err
	}
	r.columnNames = b.Values()
	return r.columnNames, nil
}

// ColumnNames returns the names recorded by ReadColumnNames, or nil.
func (r *Reader) ColumnNames() []string {
	return r.columnNames
}

// ReadAll reads rows until end of stream and returns how many were read.
func (r *Reader) ReadAll(b RowBuilder) (int, error) {
	rows := 0
	for {
		if _, err := r.ReadRow(b); err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return rows, err
		}
		rows++
	}
}

// ReadSome reads at most maxRows rows and returns how many were read.
func (r *Reader) ReadSome(maxRows int, b RowBuilder) (int, error) {
	rows := 0
	for rows < maxRows {
		if _, err := r.ReadRow(b); err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return rows, err
		}
		rows++
	}
	return rows, nil
}

// SkipRows discards at most maxRows rows and returns how many were
// skipped.
func (r *Reader) SkipRows(maxRows int) (int, error) {
	return r.ReadSome(maxRows, nopRowBuilder{})
}

// Line returns the 1-based number of the last physical line read.
func (r *Reader) Line() int {
	return r.lineNum
}

// Row returns the 1-based number of the last complete row read.
func (r *Reader) Row() int {
	return r.rowNum
}

// TotalRows returns the number of rows read over the Reader's lifetime.
func (r *Reader) TotalRows() int {
	return r.totalRows
}

func (r *Reader) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = errors.WithStack(err)
		}
	}
	r.closers = nil
	return firstErr
}

func (r *Reader) readLine() (string, bool, error) {
	var b []byte
	for {
		line, isPrefix, err := r.br.ReadLine()
		if err != nil {
			if err == io.EOF {
				return "", false, nil
			}
			return "", false, errors.WithStack(err)
		}
		b = append(b, line...)
		if !isPrefix {
			return string(b), true, nil
		}
	}
}

func (r *Reader) formatErr(msg string) error {
	return &FormatError{Source: r.source, Line: r.lineNum, Msg: msg}
}
