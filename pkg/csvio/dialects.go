package csvio

import (
	"github.com/go-ini/ini"
	"github.com/pkg/errors"
)

// LoadDialects reads named dialect profiles from an ini file. Each
// section defines one dialect:
//
//	[excel]
//	separator = ;
//	delimiter = "
//	encoding = utf-8
//
// Keys not present in a section keep their defaults.
func LoadDialects(path string) (map[string]Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dialects := make(map[string]Config)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		c := DefaultConfig()
		for _, k := range sec.Keys() {
			switch k.Name() {
			case "separator":
				r, err := singleRune("separator", k.MustString(","))
				if err != nil {
					return nil, err
				}
				c.Separator = r
			case "delimiter":
				r, err := singleRune("delimiter", k.MustString("\""))
				if err != nil {
					return nil, err
				}
				c.Delimiter = r
			case "encoding":
				c.Encoding = k.MustString(cDefaultEncoding)
			case "locale":
				c.Locale = k.MustString(cDefaultLocale)
			case "dateStyle":
				style, err := parseDateStyle(k.MustString("iso"))
				if err != nil {
					return nil, err
				}
				c.DateStyle = style
			case "ignoreMissingFields":
				c.IgnoreMissingFields = k.MustBool(false)
			case "ignoreExcessFields":
				c.IgnoreExcessFields = k.MustBool(false)
			}
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		dialects[sec.Name()] = c
	}

	return dialects, nil
}
