package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestResolve(t *testing.T) {
	tag, persist := Resolve("en", "", "")
	assert.Equal(t, language.English, tag)
	assert.True(t, persist)

	tag, persist = Resolve("", "en", "ar")
	assert.Equal(t, language.English, tag)
	assert.False(t, persist)

	tag, _ = Resolve("", "", "en-US,en;q=0.9")
	assert.Equal(t, language.English, tag)

	tag, _ = Resolve("", "", "")
	assert.Equal(t, language.Arabic, tag)

	tag, _ = Resolve("not a tag", "", "")
	assert.Equal(t, language.Arabic, tag)
}

func TestTranslations(t *testing.T) {
	assert.Equal(t, "يجب أن يكون كود المنتج 5 أرقام.", T(language.Arabic, MsgInvalidSKU))
	assert.Equal(t, "The product code must be 5 digits.", T(language.English, MsgInvalidSKU))

	for key, translations := range catalog {
		for _, tag := range Supported() {
			assert.NotEmpty(t, translations[tag], "%s has no %s text", key, tag)
		}
	}
}

func TestDir(t *testing.T) {
	assert.Equal(t, "rtl", Dir(language.Arabic))
	assert.Equal(t, "ltr", Dir(language.English))
}
