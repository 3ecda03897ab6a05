package csvio

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"goCsvStream/pkg/utils"
)

type rowsBuilder struct {
	rows [][]string
	curr []string
}

func (b *rowsBuilder) StartRow() {
	b.curr = nil
}

func (b *rowsBuilder) Add(value string) {
	b.curr = append(b.curr, value)
}

func (b *rowsBuilder) EndRow() {
	b.rows = append(b.rows, b.curr)
}

func (b *rowsBuilder) joined(i int) string {
	return strings.Join(b.rows[i], "|")
}

func TestReaderBasic(t *testing.T) {
	r, err := NewReader(strings.NewReader("a,\"b,c\",d\r\n1,2,3\r\n"), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	b := new(rowsBuilder)
	n, err := r.ReadRow(b)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("row1 fields", n, 3); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("row1 values", b.joined(0), "a|b,c|d"); err != nil {
		t.Errorf("%v", err)
		return
	}

	if _, err := r.ReadRow(b); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("row2 values", b.joined(1), "1|2|3"); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("line counter", r.Line(), 2); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("row counter", r.Row(), 2); err != nil {
		t.Errorf("%v", err)
		return
	}

	_, err = r.ReadRow(b)
	if err := utils.GetGotExpErr("end of stream", err, io.EOF); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestReaderEmbeddedNewline(t *testing.T) {
	r, err := NewReader(strings.NewReader("\"line1\nline2\",x\r\nnext,row\r\n"), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	b := new(rowsBuilder)
	n, err := r.ReadRow(b)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("fields", n, 2); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("field value", b.rows[0][0], "line1\nline2"); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("lines consumed", r.Line(), 2); err != nil {
		t.Errorf("%v", err)
		return
	}

	if _, err := r.ReadRow(b); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("next row", b.joined(1), "next|row"); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("line after next row", r.Line(), 3); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestReaderBom(t *testing.T) {
	data := append([]byte{0xef, 0xbb, 0xbf}, []byte("a,b\r\n")...)
	r, err := NewReader(bytes.NewReader(data), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	b := new(rowsBuilder)
	if _, err := r.ReadRow(b); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("first field", b.rows[0][0], "a"); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestReaderColumnCounts(t *testing.T) {
	input := "id,name,class\r\n1,2\r\n"

	r, err := NewReader(strings.NewReader(input), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	names, err := r.ReadColumnNames()
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("column count", len(names), 3); err != nil {
		t.Errorf("%v", err)
		return
	}

	_, err = r.ReadRow(new(rowsBuilder))
	var fe *FormatError
	if err := utils.GetGotExpErr("missing fields error", errors.As(err, &fe), true); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("error line", fe.Line, 2); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("error message", fe.Msg, cErrNotEnoughFields); err != nil {
		t.Errorf("%v", err)
		return
	}

	cfg := DefaultConfig()
	cfg.IgnoreMissingFields = true
	r, err = NewReader(strings.NewReader(input), cfg)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if _, err := r.ReadColumnNames(); err != nil {
		t.Errorf("%v", err)
		return
	}
	if _, err := r.ReadRow(new(rowsBuilder)); err != nil {
		t.Errorf("%v", err)
		return
	}

	input = "id,name\r\n1,2,3\r\n"
	r, err = NewReader(strings.NewReader(input), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if _, err := r.ReadColumnNames(); err != nil {
		t.Errorf("%v", err)
		return
	}
	_, err = r.ReadRow(new(rowsBuilder))
	if err := utils.GetGotExpErr("excess fields error", errors.As(err, &fe), true); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("excess message", fe.Msg, cErrTooManyFields); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestReaderMalformed(t *testing.T) {
	r, err := NewReader(strings.NewReader("\"a\"x,b\r\n"), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	_, err = r.ReadRow(new(rowsBuilder))
	var fe *FormatError
	if err := utils.GetGotExpErr("invalid data", errors.As(err, &fe), true); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("invalid data message", fe.Msg, cErrInvalidData); err != nil {
		t.Errorf("%v", err)
		return
	}

	r, err = NewReader(strings.NewReader("\"abc"), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	_, err = r.ReadRow(new(rowsBuilder))
	if err := utils.GetGotExpErr("unterminated quote", errors.As(err, &fe), true); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("unterminated message", fe.Msg, cErrUnexpectedEnd); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestReaderBulk(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 5; i++ {
		sb.WriteString(fmt.Sprintf("%d,row\r\n", i))
	}

	r, err := NewReader(strings.NewReader(sb.String()), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	b := new(rowsBuilder)
	n, err := r.ReadSome(2, b)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("read some", n, 2); err != nil {
		t.Errorf("%v", err)
		return
	}

	n, err = r.SkipRows(1)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("skipped", n, 1); err != nil {
		t.Errorf("%v", err)
		return
	}

	n, err = r.ReadAll(b)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("read all", n, 2); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("first after skip", b.rows[2][0], "4"); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("total rows", r.TotalRows(), 5); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestReaderEncoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding = "iso-8859-1"
	r, err := NewReader(bytes.NewReader([]byte("caf\xe9,1\r\n")), cfg)
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	b := new(rowsBuilder)
	if _, err := r.ReadRow(b); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("decoded field", b.rows[0][0], "café"); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestFileReaderGzip(t *testing.T) {
	rootDir, err := utils.InitTestDir("TestFileReaderGzip")
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	path := rootDir + "/data.csv.gz"
	fw, err := os.Create(path)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	zw := gzip.NewWriter(fw)
	zw.Write([]byte("a,b\r\nc,d\r\n"))
	zw.Close()
	fw.Close()

	r, err := NewFileReader(path, DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	defer r.Close()

	b := new(rowsBuilder)
	n, err := r.ReadAll(b)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("rows", n, 2); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("row2", b.joined(1), "c|d"); err != nil {
		t.Errorf("%v", err)
		return
	}
}

func TestRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter(buf, DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	values := []string{"a,b", "say \"hi\"", "line1\nline2", "plain"}
	for _, v := range values {
		if err := w.WriteValue(v); err != nil {
			t.Errorf("%v", err)
			return
		}
	}
	if err := w.NextRow(); err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := w.Flush(); err != nil {
		t.Errorf("%v", err)
		return
	}

	r, err := NewReader(strings.NewReader(buf.String()), DefaultConfig())
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	b := new(rowsBuilder)
	n, err := r.ReadRow(b)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := utils.GetGotExpErr("field count", n, len(values)); err != nil {
		t.Errorf("%v", err)
		return
	}
	for i, v := range values {
		if err := utils.GetGotExpErr(fmt.Sprintf("field %d", i), b.rows[0][i], v); err != nil {
			t.Errorf("%v", err)
			return
		}
	}
}
