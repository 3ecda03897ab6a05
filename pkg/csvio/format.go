package csvio

import (
	"fmt"
	"time"

	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Date marks a time.Time value that should be written with the
// date-only layout.
type Date time.Time

// TimeOfDay marks a time.Time value that should be written with the
// time-of-day layout.
type TimeOfDay time.Time

type dateLayouts struct {
	dateTime  string
	dateOnly  string
	timeOfDay string
}

var styleLayouts = map[DateStyle]dateLayouts{
	StyleISO:     {"2006-01-02 15:04:05", "2006-01-02", "15:04:05"},
	StyleCompact: {"20060102 150405", "20060102", "150405"},
}

// valueFormatter renders field values as text before quoting. Numbers go
// through the locale's printer with grouping disabled and at most 15
// fraction digits.
type valueFormatter struct {
	printer *message.Printer
	layouts dateLayouts
}

func newValueFormatter(cfg *Config) *valueFormatter {
	f := new(valueFormatter)
	f.printer = message.NewPrinter(cfg.localeTag())
	f.layouts = styleLayouts[cfg.DateStyle]
	return f
}

func (f *valueFormatter) format(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Date:
		return time.Time(t).Format(f.layouts.dateOnly)
	case TimeOfDay:
		return time.Time(t).Format(f.layouts.timeOfDay)
	case time.Time:
		return t.Format(f.layouts.dateTime)
	case float32:
		return f.formatNumber(float64(t))
	case float64:
		return f.formatNumber(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return f.printer.Sprint(number.Decimal(t, number.NoSeparator()))
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (f *valueFormatter) formatNumber(v float64) string {
	return f.printer.Sprint(number.Decimal(v,
		number.NoSeparator(),
		number.MaxFractionDigits(cMaxFractionDigits)))
}
