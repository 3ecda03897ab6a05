package csvio

const (
	// Rows are always terminated with CRLF on output, independent of the
	// platform. Readers accept both LF and CRLF.
	cLineDelimiter = "\r\n"

	cDefaultEncoding  = "utf-8"
	cDefaultLocale    = "en"
	cDefaultSeparator = ','
	cDefaultDelimiter = '"'

	cMaxFractionDigits = 15

	// Characters that never force quoting on output, besides letters and
	// digits. The separator and delimiter are checked separately.
	cQuoteFreeChars = " \t.,:;!?-_@#%&()[]{}+=*/'<>|~^"
)

const (
	cErrInvalidData     = "invalid csv data"
	cErrUnexpectedEnd   = "unexpected end of input"
	cErrNotEnoughFields = "not enough fields"
	cErrTooManyFields   = "too many fields"
)

var utf8Bom = []byte{0xef, 0xbb, 0xbf}
