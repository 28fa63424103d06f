package models

import (
	"fmt"
	"strings"
)

// SKULength is the exact number of digits in a product code.
const SKULength = 5

// Currency is appended to prices on images and captions.
const Currency = "د.ك"

type ProductDetails struct {
	Title string `json:"title"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

// SanitizeSKU drops every non-digit character.
func SanitizeSKU(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// ValidSKU reports whether sku is exactly SKULength ASCII digits.
func ValidSKU(sku string) bool {
	if len(sku) != SKULength {
		return false
	}
	for _, r := range sku {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type AspectRatio string

const (
	AspectSquare      AspectRatio = "1:1"
	AspectPortrait23  AspectRatio = "2:3"
	AspectLandscape32 AspectRatio = "3:2"
	AspectPortrait34  AspectRatio = "3:4"
	AspectLandscape43 AspectRatio = "4:3"
	AspectFeed        AspectRatio = "4:5"
	AspectLandscape54 AspectRatio = "5:4"
	AspectStory       AspectRatio = "9:16"
	AspectWide        AspectRatio = "16:9"
	AspectUltraWide   AspectRatio = "21:9"
)

var aspectRatios = map[AspectRatio]bool{
	AspectSquare: true, AspectPortrait23: true, AspectLandscape32: true,
	AspectPortrait34: true, AspectLandscape43: true, AspectFeed: true,
	AspectLandscape54: true, AspectStory: true, AspectWide: true, AspectUltraWide: true,
}

func (a AspectRatio) Validate() error {
	if !aspectRatios[a] {
		return fmt.Errorf("unsupported aspect ratio %q", string(a))
	}
	return nil
}

type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

func (s ImageSize) Validate() error {
	switch s {
	case ImageSize1K, ImageSize2K, ImageSize4K:
		return nil
	}
	return fmt.Errorf("unsupported image size %q", string(s))
}
