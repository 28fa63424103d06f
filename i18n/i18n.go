package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "studio_lang"
)

var (
	supported = []language.Tag{language.Arabic, language.English}
	matcher   = language.NewMatcher(supported)
)

// Default is Arabic; the studio's audience posts in Arabic.
func Default() language.Tag {
	return language.Arabic
}

func Supported() []language.Tag {
	return supported
}

// Resolve picks the language from, in order, the explicit query value, the
// stored cookie value and the Accept-Language header.
func Resolve(query, cookie, acceptLanguage string) (language.Tag, bool) {
	if tag, ok := parse(query); ok {
		return tag, true
	}
	if tag, ok := parse(cookie); ok {
		return tag, false
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			tag, _, confidence := matcher.Match(tags...)
			if confidence != language.No {
				return base(tag), false
			}
		}
	}
	return Default(), false
}

func parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	matched, _, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.Und, false
	}
	return base(matched), true
}

// base strips the -u-rg extension the matcher adds so the tag is usable as a
// catalog key and a cookie value.
func base(tag language.Tag) language.Tag {
	b, _ := tag.Base()
	t, err := language.Compose(b)
	if err != nil {
		return Default()
	}
	return t
}

func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Dir is the HTML text direction for tag.
func Dir(tag language.Tag) string {
	if b, _ := tag.Base(); b.String() == "ar" {
		return "rtl"
	}
	return "ltr"
}
