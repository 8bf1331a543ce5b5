// Package locale serves user-facing messages in Turkish and English.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/psychmag/psychmag/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*.toml
var translationFS embed.FS

const (
	// CookieName is the cookie that pins the interface language.
	CookieName = "lang"

	ginLocalizerKey = "localizer"
	ginLangKey      = "lang"
)

// Bundle holds the parsed translations and the supported languages.
type Bundle struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	tags    []language.Tag
}

// NewBundle loads the embedded translations. The first supported locale
// that parses is the fallback when nothing matches.
func NewBundle(defaultLocale string, supported []string) (*Bundle, error) {
	defaultTag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	b := i18n.NewBundle(defaultTag)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if err := parseTranslationFiles(translationFS, b); err != nil {
		return nil, err
	}

	tags := []language.Tag{defaultTag}
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			logger.Warningf("ignoring unsupported locale %q: %v", s, err)
			continue
		}
		if tag != defaultTag {
			tags = append(tags, tag)
		}
	}

	return &Bundle{
		bundle:  b,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

func parseTranslationFiles(fsys fs.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
}

// Match picks the supported language for a cookie value or an
// Accept-Language header.
func (b *Bundle) Match(preferences ...string) language.Tag {
	var wanted []language.Tag
	for _, pref := range preferences {
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}
	_, index, _ := b.matcher.Match(wanted...)
	return b.tags[index]
}

// Localizer returns a localizer for lang.
func (b *Bundle) Localizer(lang language.Tag) *i18n.Localizer {
	return i18n.NewLocalizer(b.bundle, lang.String())
}

// Message localizes id for lang, falling back to id itself.
func (b *Bundle) Message(lang language.Tag, id string) string {
	return localize(b.Localizer(lang), id, nil)
}

// Middleware selects the request language from the lang cookie, then the
// Accept-Language header.
func (b *Bundle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(CookieName)
		lang := b.Match(cookie, c.GetHeader("Accept-Language"))

		c.Set(ginLangKey, lang)
		c.Set(ginLocalizerKey, b.Localizer(lang))
		c.Next()
	}
}

// T localizes id for the current request. Without the middleware it
// returns id.
func T(c *gin.Context, id string, data ...map[string]any) string {
	val, ok := c.Get(ginLocalizerKey)
	if !ok {
		return id
	}
	localizer, ok := val.(*i18n.Localizer)
	if !ok {
		return id
	}
	var templateData map[string]any
	if len(data) > 0 {
		templateData = data[0]
	}
	return localize(localizer, id, templateData)
}

// Lang returns the language chosen for the current request.
func Lang(c *gin.Context) string {
	if val, ok := c.Get(ginLangKey); ok {
		if tag, ok := val.(language.Tag); ok {
			base, _ := tag.Base()
			return base.String()
		}
	}
	return ""
}

func localize(localizer *i18n.Localizer, id string, data map[string]any) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil || strings.TrimSpace(msg) == "" {
		logger.Debugf("missing translation for %s: %v", id, err)
		return id
	}
	return msg
}
