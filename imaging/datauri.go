package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// Image is raw image bytes with their mime type.
type Image struct {
	Data     []byte
	MIMEType string
}

func (img Image) Empty() bool {
	return len(img.Data) == 0
}

// DataURI encodes img as "data:<mime>;base64,<payload>".
func (img Image) DataURI() string {
	if img.Empty() {
		return ""
	}
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ParseDataURI decodes a base64 data URI. Only the base64 form is accepted.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("%w: payload is not base64", ErrInvalidDataURI)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return Image{Data: data, MIMEType: mime}, nil
}
