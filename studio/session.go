package studio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/storage"
	"golang.org/x/sync/errgroup"
)

// Session is one merchant's studio. All state is guarded by mu; runs publish
// into it only while their sequence number is still the latest.
type Session struct {
	owner string
	reg   *Registry
	// lastSeen is guarded by reg.mu.
	lastSeen time.Time

	mu       sync.Mutex
	details  models.ProductDetails
	product  imaging.Image
	template imaging.Image
	loading  bool
	err      error
	result   Result
	seq      uint64
	cancel   context.CancelFunc

	runs sync.WaitGroup
}

type runInput struct {
	seq      uint64
	details  models.ProductDetails
	product  imaging.Image
	template imaging.Image
}

func (s *Session) Owner() string {
	return s.owner
}

// UpdateDetails replaces the form fields. The code keeps digits only.
func (s *Session) UpdateDetails(details models.ProductDetails) models.ProductDetails {
	details.SKU = models.SanitizeSKU(details.SKU)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = details
	return details
}

func (s *Session) SetProductImage(img imaging.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.product = img
}

// SetTemplateImage stores the template in the durable slot, then in memory.
func (s *Session) SetTemplateImage(ctx context.Context, img imaging.Image) error {
	if img.Empty() {
		return fmt.Errorf("template image is empty")
	}
	if err := s.reg.templates.Save(ctx, s.owner, models.TemplateSlotKey, img.DataURI()); err != nil {
		return fmt.Errorf("failed to store template: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = img
	return nil
}

// ClearTemplate removes the template from the durable slot and from memory.
func (s *Session) ClearTemplate(ctx context.Context) error {
	if err := s.reg.templates.Remove(ctx, s.owner, models.TemplateSlotKey); err != nil {
		return fmt.Errorf("failed to remove template: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = imaging.Image{}
	return nil
}

func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Details:       s.details,
		ProductImage:  s.product.DataURI(),
		TemplateImage: s.template.DataURI(),
		Loading:       s.loading,
		Err:           s.err,
		Caption:       s.result.Caption,
		FeedImage:     s.result.Feed.DataURI(),
		StoryImage:    s.result.Story.DataURI(),
		FeedURL:       s.result.FeedURL,
		StoryURL:      s.result.StoryURL,
		RunID:         s.seq,
	}
}

// Produce validates the form and starts a run in the background. Validation
// failures are recorded as the session error and returned; nothing is sent
// to gen. A run started while another is in flight supersedes it: the old
// run's context is cancelled and anything it still produces is dropped.
func (s *Session) Produce(ctx context.Context, gen Generator) (uint64, error) {
	s.mu.Lock()
	if s.product.Empty() || s.template.Empty() {
		s.err = ErrMissingImages
		s.mu.Unlock()
		return 0, ErrMissingImages
	}
	if !models.ValidSKU(s.details.SKU) {
		s.err = ErrInvalidSKU
		s.mu.Unlock()
		return 0, ErrInvalidSKU
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	in := runInput{seq: s.seq, details: s.details, product: s.product, template: s.template}
	s.loading = true
	s.err = nil
	s.result = Result{}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.reg.timeout)
	s.cancel = cancel
	s.runs.Add(1)
	s.mu.Unlock()

	go s.run(runCtx, cancel, gen, in)
	return in.seq, nil
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Wait blocks until every run started so far has returned.
func (s *Session) Wait() {
	s.runs.Wait()
}

func (s *Session) stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.Wait()
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen Generator, in runInput) {
	defer s.runs.Done()
	defer cancel()
	defer s.settle(in.seq)

	logger := log.FromContextOrDiscard(ctx).With("owner", s.owner, "run", in.seq, "sku", in.details.SKU)
	ctx = log.NewContext(ctx, logger)
	logger.Info("production run started")

	prod := &models.Production{
		Owner:  s.owner,
		RunID:  in.seq,
		Title:  in.details.Title,
		Price:  in.details.Price,
		SKU:    in.details.SKU,
		Status: models.StatusProcessing,
	}
	if err := s.reg.productions.Create(ctx, prod); err != nil {
		logger.Warn("could not record production", "error", err)
		prod = nil
	}

	result, err := s.generate(ctx, gen, in)
	if err == nil {
		s.archive(ctx, in, &result)
	}
	published := s.publish(in.seq, result, err)

	switch {
	case err != nil:
		logger.Warn("production run failed", "error", err, "published", published)
	default:
		logger.Info("production run finished", "published", published)
	}

	if prod != nil {
		prod.RephrasedTitle = result.RephrasedTitle
		prod.Caption = result.Caption
		prod.FeedURL = result.FeedURL
		prod.StoryURL = result.StoryURL
		if err != nil {
			prod.Status = models.StatusFailed
			prod.ErrorMessage = err.Error()
		} else {
			prod.Status = models.StatusSuccess
		}
		if ferr := s.reg.productions.Finish(context.WithoutCancel(ctx), prod); ferr != nil {
			logger.Warn("could not finish production record", "error", ferr)
		}
	}
}

// generate sequences the text request before the two image requests, which
// run in parallel and fail together.
func (s *Session) generate(ctx context.Context, gen Generator, in runInput) (Result, error) {
	text, err := gen.PrepareMarketingText(ctx, in.details)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text.Caption) == "" {
		return Result{}, ErrEmptyCaption
	}

	title := text.RephrasedTitle
	if strings.TrimSpace(title) == "" {
		title = in.details.Title
	}
	result := Result{Caption: text.Caption, RephrasedTitle: title}
	s.publishCaption(in.seq, text.Caption)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := gen.GenerateDukkanPost(gctx, in.product, in.template, title, in.details.Price, in.details.SKU, models.AspectFeed)
		result.Feed = img
		return err
	})
	g.Go(func() error {
		img, err := gen.GenerateDukkanPost(gctx, in.product, in.template, title, in.details.Price, in.details.SKU, models.AspectStory)
		result.Story = img
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{Caption: result.Caption, RephrasedTitle: title}, err
	}
	return result, nil
}

func (s *Session) archive(ctx context.Context, in runInput, result *Result) {
	if s.reg.archive == nil {
		return
	}
	logger := log.FromContextOrDiscard(ctx)
	id := uuid.NewString()
	meta := map[string]string{"sku": in.details.SKU, "owner": s.owner}

	feedURL, err := s.reg.archive.Upload(ctx, storage.UploadParams{
		Name: fmt.Sprintf("%s-%s-feed.png", in.details.SKU, id), Data: result.Feed.Data,
		ContentType: result.Feed.MIMEType, Metadata: meta,
	})
	if err != nil {
		logger.Warn("could not archive feed image", "error", err)
		return
	}
	storyURL, err := s.reg.archive.Upload(ctx, storage.UploadParams{
		Name: fmt.Sprintf("%s-%s-story.png", in.details.SKU, id), Data: result.Story.Data,
		ContentType: result.Story.MIMEType, Metadata: meta,
	})
	if err != nil {
		logger.Warn("could not archive story image", "error", err)
		return
	}
	result.FeedURL, result.StoryURL = feedURL, storyURL
}

func (s *Session) publishCaption(seq uint64, caption string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.result.Caption = caption
	}
}

// publish applies the run's outcome unless a newer run has started. On
// failure the caption already shown is kept and no images are shown.
func (s *Session) publish(seq uint64, result Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	if err != nil {
		s.err = err
		s.result = Result{Caption: s.result.Caption}
		return true
	}
	s.result = result
	return true
}

func (s *Session) settle(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.loading = false
	}
}
