package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-3-pro-image-preview"
)

// ContentGenerator is the slice of the genai API the client needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Options struct {
	TextModel  string
	ImageModel string
	ImageSize  models.ImageSize
}

// MarketingText is the rewritten headline and the ready-to-post caption.
type MarketingText struct {
	RephrasedTitle string
	Caption        string
}

type Client struct {
	models     ContentGenerator
	textModel  string
	imageModel string
	imageSize  models.ImageSize
	verify     func(ctx context.Context, model string) error
}

func New(gen ContentGenerator, opts Options) *Client {
	c := &Client{
		models:     gen,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		imageSize:  opts.ImageSize,
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	if c.imageSize == "" {
		c.imageSize = models.ImageSize1K
	}
	return c
}

// Dial creates a Gemini API client authenticated with apiKey.
func Dial(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.ImageSize != "" {
		if err := opts.ImageSize.Validate(); err != nil {
			return nil, err
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c := New(client.Models, opts)
	c.verify = func(ctx context.Context, model string) error {
		_, err := client.Models.Get(ctx, model, nil)
		return err
	}
	return c, nil
}

// Verify checks the key can see the text model. Clients built with New have
// nothing to check.
func (c *Client) Verify(ctx context.Context) error {
	if c.verify == nil {
		return nil
	}
	if err := c.verify(ctx, c.textModel); err != nil {
		return &UpstreamError{Op: "verify key", Err: err}
	}
	return nil
}

var marketingTextSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rephrasedTitle": {Type: genai.TypeString},
		"caption":        {Type: genai.TypeString},
	},
	Required: []string{"rephrasedTitle", "caption"},
}

// PrepareMarketingText asks the text model for a catchy headline and a
// caption. A body that is not a JSON object carrying both string fields is
// reported as ErrMalformedResponse.
func (c *Client) PrepareMarketingText(ctx context.Context, details models.ProductDetails) (MarketingText, error) {
	logger := log.FromContextOrDiscard(ctx).With("model", c.textModel, "sku", details.SKU)
	logger.Info("preparing marketing text")

	resp, err := c.models.GenerateContent(ctx, c.textModel,
		genai.Text(marketingTextPrompt(details)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   marketingTextSchema,
		},
	)
	if err != nil {
		return MarketingText{}, &UpstreamError{Op: "prepare marketing text", Err: err}
	}

	text, err := decodeMarketingText(resp)
	if err != nil {
		logger.Warn("could not decode marketing text", "error", err)
		return MarketingText{}, err
	}
	return text, nil
}

func decodeMarketingText(resp *genai.GenerateContentResponse) (MarketingText, error) {
	if resp == nil {
		return MarketingText{}, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	body := strings.TrimSpace(resp.Text())
	if body == "" {
		return MarketingText{}, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var raw struct {
		RephrasedTitle *string `json:"rephrasedTitle"`
		Caption        *string `json:"caption"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return MarketingText{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.RephrasedTitle == nil || raw.Caption == nil {
		return MarketingText{}, fmt.Errorf("%w: missing rephrasedTitle or caption", ErrMalformedResponse)
	}
	return MarketingText{RephrasedTitle: *raw.RephrasedTitle, Caption: *raw.Caption}, nil
}

// GenerateDukkanPost composites the product onto the template at the given
// aspect ratio and returns the first inline image of the answer.
func (c *Client) GenerateDukkanPost(ctx context.Context, product, template imaging.Image, title, price, sku string, aspect models.AspectRatio) (imaging.Image, error) {
	if err := aspect.Validate(); err != nil {
		return imaging.Image{}, err
	}

	logger := log.FromContextOrDiscard(ctx).With("model", c.imageModel, "aspect_ratio", string(aspect), "sku", sku)
	logger.Info("generating post image")

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(product.Data, product.MIMEType),
			genai.NewPartFromBytes(template.Data, template.MIMEType),
			genai.NewPartFromText(postPrompt(title, price, sku)),
		}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.imageModel, contents, &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(aspect),
			ImageSize:   string(c.imageSize),
		},
	})
	if err != nil {
		return imaging.Image{}, &UpstreamError{Op: "generate " + string(aspect) + " post", Err: err}
	}

	img, ok := firstInlineImage(resp)
	if !ok {
		logger.Warn("image model returned no image part")
		return imaging.Image{}, fmt.Errorf("%w (%s)", ErrNoImage, aspect)
	}
	logger.Info("received post image", "bytes", len(img.Data))
	return img, nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) (imaging.Image, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return imaging.Image{}, false
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return imaging.Image{}, false
	}

	for _, part := range content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		if !strings.HasPrefix(mime, "image/") {
			continue
		}
		return imaging.Image{Data: part.InlineData.Data, MIMEType: mime}, true
	}
	return imaging.Image{}, false
}
