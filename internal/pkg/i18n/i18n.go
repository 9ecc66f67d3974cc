// Package i18n holds language-code handling shared by the domain model and
// the HTTP layer.
package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultLang = "en"

var DefaultSupported = []string{"en", "ru", "bg", "he"}

// BaseCode strips the region/script suffix: "ru-RU" -> "ru", "pt_BR" -> "pt".
func BaseCode(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	if tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-")); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		return lang[:i]
	}
	return lang
}

// Fold normalizes a free-text code for case-insensitive comparison.
// A Caser is stateful, so one is built per call.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Resolver maps whatever the client sent to one of the supported languages.
type Resolver struct {
	def       string
	supported map[string]struct{}
	matcher   language.Matcher
	tags      []language.Tag
}

func NewResolver(def string, supported []string) *Resolver {
	def = strings.ToLower(strings.TrimSpace(def))
	if def == "" {
		def = DefaultLang
	}
	if len(supported) == 0 {
		supported = DefaultSupported
	}

	// the default goes first so the matcher falls back to it
	tags := []language.Tag{language.Make(def)}
	set := map[string]struct{}{def: {}}
	for _, s := range supported {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := set[s]; ok {
			continue
		}
		set[s] = struct{}{}
		tags = append(tags, language.Make(s))
	}

	return &Resolver{
		def:       def,
		supported: set,
		matcher:   language.NewMatcher(tags),
		tags:      tags,
	}
}

func (r *Resolver) Default() string {
	return r.def
}

// Normalize returns lang if supported, its base code if that is supported,
// otherwise the default language. Never fails.
func (r *Resolver) Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return r.def
	}
	if _, ok := r.supported[lang]; ok {
		return lang
	}
	if base := BaseCode(lang); base != "" {
		if _, ok := r.supported[base]; ok {
			return base
		}
	}
	return r.def
}

// FromAcceptLanguage picks the best supported language for an
// Accept-Language header value.
func (r *Resolver) FromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return r.def
	}
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return r.def
	}
	_, idx, conf := r.matcher.Match(prefs...)
	if conf == language.No {
		return r.def
	}
	return r.Normalize(r.tags[idx].String())
}

// Pick resolves the request language: explicit lang wins, then the header.
func (r *Resolver) Pick(lang, acceptLanguage string) string {
	if strings.TrimSpace(lang) != "" {
		return r.Normalize(lang)
	}
	return r.FromAcceptLanguage(acceptLanguage)
}
