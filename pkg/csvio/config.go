// Package csvio implements a streaming CSV reader and writer with
// configurable separator, delimiter, locale and encoding.
package csvio

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DateStyle selects one of the predefined date/time output formats.
type DateStyle int

const (
	StyleISO     DateStyle = iota // 2006-01-02 15:04:05
	StyleCompact                  // 20060102 150405
)

// Config holds the settings shared by Reader and Writer. A Config is
// copied into each reader or writer on construction and is not consulted
// again afterwards.
type Config struct {
	Encoding            string
	Locale              string
	Separator           rune
	Delimiter           rune
	DateStyle           DateStyle
	IgnoreMissingFields bool
	IgnoreExcessFields  bool
}

func DefaultConfig() Config {
	return Config{
		Encoding:  cDefaultEncoding,
		Locale:    cDefaultLocale,
		Separator: cDefaultSeparator,
		Delimiter: cDefaultDelimiter,
		DateStyle: StyleISO,
	}
}

// SemicolonConfig returns the semicolon-separated dialect used by
// locales where the comma is the decimal mark.
func SemicolonConfig() Config {
	c := DefaultConfig()
	c.Separator = ';'
	return c
}

func (c *Config) validate() error {
	if c.Separator == 0 {
		return errors.New("separator must not be empty")
	}
	if c.Delimiter == 0 {
		return errors.New("delimiter must not be empty")
	}
	if c.Separator == c.Delimiter {
		return errors.New(fmt.Sprintf("separator and delimiter must differ: %q", c.Separator))
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return errors.New(fmt.Sprintf("unknown locale %s", c.Locale))
		}
	}
	switch c.DateStyle {
	case StyleISO, StyleCompact:
	default:
		return errors.New(fmt.Sprintf("unknown date style %d", c.DateStyle))
	}
	return nil
}

func (c *Config) localeTag() language.Tag {
	if c.Locale == "" {
		return language.Und
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

type fileConfig struct {
	Encoding            string `yaml:"encoding"`
	Locale              string `yaml:"locale"`
	Separator           string `yaml:"separator"`
	Delimiter           string `yaml:"delimiter"`
	DateStyle           string `yaml:"dateStyle"`
	IgnoreMissingFields bool   `yaml:"ignoreMissingFields"`
	IgnoreExcessFields  bool   `yaml:"ignoreExcessFields"`
}

// LoadConfig reads a Config from a YAML file. Missing keys keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	buf, err := os.ReadFile(path)
	if err != nil {
		return c, errors.WithStack(err)
	}

	fc := fileConfig{}
	if err := yaml.Unmarshal(buf, &fc); err != nil {
		return c, errors.WithStack(err)
	}

	if fc.Encoding != "" {
		c.Encoding = fc.Encoding
	}
	if fc.Locale != "" {
		c.Locale = fc.Locale
	}
	if fc.Separator != "" {
		r, err := singleRune("separator", fc.Separator)
		if err != nil {
			return c, err
		}
		c.Separator = r
	}
	if fc.Delimiter != "" {
		r, err := singleRune("delimiter", fc.Delimiter)
		if err != nil {
			return c, err
		}
		c.Delimiter = r
	}
	if fc.DateStyle != "" {
		style, err := parseDateStyle(fc.DateStyle)
		if err != nil {
			return c, err
		}
		c.DateStyle = style
	}
	c.IgnoreMissingFields = fc.IgnoreMissingFields
	c.IgnoreExcessFields = fc.IgnoreExcessFields

	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func singleRune(name, s string) (rune, error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, errors.New(fmt.Sprintf("%s must be a single character: %q", name, s))
	}
	return runes[0], nil
}

func parseDateStyle(s string) (DateStyle, error) {
	switch s {
	case "iso":
		return StyleISO, nil
	case "compact":
		return StyleCompact, nil
	}
	return StyleISO, errors.New(fmt.Sprintf("unknown date style %s", s))
}
