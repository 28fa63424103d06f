package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSKU(t *testing.T) {
	cases := map[string]string{
		"12345":      "12345",
		"12a34-5":    "12345",
		"abc":        "",
		"":           "",
		"١٢٣":        "",
		" 9 8 7 ":    "987",
		"1234567890": "1234567890",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeSKU(in), "input %q", in)
	}
}

func TestValidSKU(t *testing.T) {
	assert.True(t, ValidSKU("12345"))
	assert.True(t, ValidSKU("00000"))
	assert.False(t, ValidSKU("1234"))
	assert.False(t, ValidSKU("123456"))
	assert.False(t, ValidSKU("12a45"))
	assert.False(t, ValidSKU(""))
}

func TestAspectRatioValidate(t *testing.T) {
	assert.NoError(t, AspectFeed.Validate())
	assert.NoError(t, AspectStory.Validate())
	assert.Error(t, AspectRatio("7:3").Validate())
	assert.Error(t, AspectRatio("").Validate())
}

func TestImageSizeValidate(t *testing.T) {
	assert.NoError(t, ImageSize1K.Validate())
	assert.Error(t, ImageSize("8K").Validate())
}
