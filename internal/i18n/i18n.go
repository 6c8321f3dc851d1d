// Package i18n holds the UI message catalog. Catalog files are embedded YAML,
// one per locale, registered with golang.org/x/text/message so that
// translations share the printer's plural-aware formatting.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source language of the catalog.
const BaseLocale = "id-ID"

//go:embed locales/*.yaml
var localeFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog maps locale to message key to text.
type Catalog struct {
	locales map[string]map[string]string
}

// LoadFS parses every locales/*.yaml file in fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	c := &Catalog{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if f.Locale != want {
			return nil, fmt.Errorf("%s: locale %q must match file name", p, f.Locale)
		}
		if len(f.Messages) == 0 {
			return nil, fmt.Errorf("%s: no messages", p)
		}
		c.locales[f.Locale] = f.Messages
	}
	if _, ok := c.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s missing", BaseLocale)
	}
	return c, nil
}

// Locales returns the available locale ids, sorted.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.locales))
	for l := range c.locales {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Missing lists keys present in the base locale but absent from locale.
func (c *Catalog) Missing(locale string) []string {
	var out []string
	msgs := c.locales[locale]
	for k := range c.locales[BaseLocale] {
		if _, ok := msgs[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Register installs every message with x/text/message. Keys missing from a
// locale fall back to the base text.
func (c *Catalog) Register() error {
	base := c.locales[BaseLocale]
	for locale, msgs := range c.locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", locale, err)
		}
		for key, text := range base {
			if t, ok := msgs[key]; ok {
				text = t
			}
			if err := message.SetString(tag, key, text); err != nil {
				return fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
	}
	return nil
}

func (c *Catalog) tags() []language.Tag {
	tags := []language.Tag{language.MustParse(BaseLocale)}
	for _, l := range c.Locales() {
		if l == BaseLocale {
			continue
		}
		tags = append(tags, language.MustParse(l))
	}
	return tags
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

func embedded() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(localeFS)
		if defaultErr == nil {
			defaultErr = defaultCatalog.Register()
		}
	})
	return defaultCatalog, defaultErr
}

// Translator formats catalog messages for one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for the closest supported match of locale.
// Unknown or empty locales resolve to the base locale.
func New(locale string) (*Translator, error) {
	c, err := embedded()
	if err != nil {
		return nil, err
	}
	tags := c.tags()
	matcher := language.NewMatcher(tags)
	want, _, _ := language.ParseAcceptLanguage(locale)
	_, idx, _ := matcher.Match(want...)
	tag := tags[idx]
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Default returns the base-locale translator. It panics only if the embedded
// catalog is malformed, which the package tests rule out.
func Default() *Translator {
	t, err := New(BaseLocale)
	if err != nil {
		panic(err)
	}
	return t
}

// T formats the message for key with args. A nil translator uses Default.
func (t *Translator) T(key string, args ...any) string {
	if t == nil {
		t = Default()
	}
	return t.printer.Sprintf(key, args...)
}

// Tag reports the resolved locale.
func (t *Translator) Tag() language.Tag {
	if t == nil {
		return language.MustParse(BaseLocale)
	}
	return t.tag
}
