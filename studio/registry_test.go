package studio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/malshatti44/DA-Studio/gemini"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := newMemTemplates()

	first := NewRegistry(Options{Templates: store, Productions: &memProductions{}})
	s, err := first.Session(ctx, "owner-1")
	require.NoError(t, err)
	require.NoError(t, s.SetTemplateImage(ctx, templateImg))
	s.SetProductImage(productImg)

	reloaded := NewRegistry(Options{Templates: store, Productions: &memProductions{}})
	s2, err := reloaded.Session(ctx, "owner-1")
	require.NoError(t, err)
	v := s2.View()
	assert.Equal(t, templateImg.DataURI(), v.TemplateImage)
	assert.Empty(t, v.ProductImage, "product image lives in memory only")

	require.NoError(t, s2.ClearTemplate(ctx))
	assert.Empty(t, s2.View().TemplateImage)

	again := NewRegistry(Options{Templates: store, Productions: &memProductions{}})
	s3, err := again.Session(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, s3.View().TemplateImage)
}

func TestTemplateSlotsArePerOwner(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(Options{Templates: newMemTemplates(), Productions: &memProductions{}})

	a, err := reg.Session(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, a.SetTemplateImage(ctx, templateImg))

	b, err := reg.Session(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.View().TemplateImage)
}

func TestUnreadableStoredTemplateIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := newMemTemplates()
	require.NoError(t, store.Save(ctx, "owner-1", models.TemplateSlotKey, "garbage"))

	s, err := NewRegistry(Options{Templates: store, Productions: &memProductions{}}).Session(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, s.View().TemplateImage)
}

func TestSetTemplateRejectsEmpty(t *testing.T) {
	s, err := NewRegistry(Options{Templates: newMemTemplates(), Productions: &memProductions{}}).Session(context.Background(), "o")
	require.NoError(t, err)
	assert.Error(t, s.SetTemplateImage(context.Background(), imaging.Image{}))
}

func TestSessionIsSharedPerOwner(t *testing.T) {
	reg := NewRegistry(Options{Templates: newMemTemplates(), Productions: &memProductions{}})

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := reg.Session(context.Background(), "owner-1")
			if err == nil {
				got[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newIdleRegistry(store TemplateStore, idle time.Duration) (*Registry, *clock) {
	c := &clock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	reg := NewRegistry(Options{Templates: store, Productions: &memProductions{}, IdleTimeout: idle})
	reg.now = c.Now
	return reg, c
}

func TestIdleSessionIsEvictedAndReloaded(t *testing.T) {
	ctx := context.Background()
	reg, clk := newIdleRegistry(newMemTemplates(), time.Minute)
	t.Cleanup(func() { _ = reg.Shutdown() })

	s, err := reg.Session(ctx, "owner-1")
	require.NoError(t, err)
	require.NoError(t, s.SetTemplateImage(ctx, templateImg))
	s.SetProductImage(productImg)

	clk.Advance(30 * time.Second)
	assert.Zero(t, reg.Evict(ctx))

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, reg.Evict(ctx))
	assert.Zero(t, reg.Len())

	fresh, err := reg.Session(ctx, "owner-1")
	require.NoError(t, err)
	assert.NotSame(t, s, fresh)
	assert.Equal(t, templateImg.DataURI(), fresh.View().TemplateImage)
	assert.Empty(t, fresh.View().ProductImage)
}

func TestEvictKeepsRecentlyUsedSessions(t *testing.T) {
	ctx := context.Background()
	reg, clk := newIdleRegistry(newMemTemplates(), time.Minute)
	t.Cleanup(func() { _ = reg.Shutdown() })

	_, err := reg.Session(ctx, "a")
	require.NoError(t, err)
	clk.Advance(50 * time.Second)
	_, err = reg.Session(ctx, "b")
	require.NoError(t, err)

	clk.Advance(40 * time.Second)
	assert.Equal(t, 1, reg.Evict(ctx))
	assert.Equal(t, 1, reg.Len())

	// a lookup refreshes the session
	_, err = reg.Session(ctx, "b")
	require.NoError(t, err)
	clk.Advance(40 * time.Second)
	assert.Zero(t, reg.Evict(ctx))
}

func TestEvictSkipsRunningSessions(t *testing.T) {
	ctx := context.Background()
	reg, clk := newIdleRegistry(newMemTemplates(), time.Minute)
	t.Cleanup(func() { _ = reg.Shutdown() })

	s, err := reg.Session(ctx, "owner-1")
	require.NoError(t, err)
	s.UpdateDetails(models.ProductDetails{Title: "Mouse", Price: "5", SKU: "12345"})
	s.SetProductImage(productImg)
	require.NoError(t, s.SetTemplateImage(ctx, templateImg))

	release := make(chan struct{})
	gen := &fakeGenerator{text: func(ctx context.Context, _ models.ProductDetails) (gemini.MarketingText, error) {
		<-release
		return gemini.MarketingText{RephrasedTitle: "t", Caption: "c"}, nil
	}}
	_, err = s.Produce(ctx, gen)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	assert.Zero(t, reg.Evict(ctx))

	close(release)
	s.Wait()
	assert.Equal(t, 1, reg.Evict(ctx))
}

func TestNoIdleTimeoutKeepsSessions(t *testing.T) {
	ctx := context.Background()
	reg, clk := newIdleRegistry(newMemTemplates(), 0)

	_, err := reg.Session(ctx, "owner-1")
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)
	assert.Zero(t, reg.Evict(ctx))
	assert.Equal(t, 1, reg.Len())
}

func TestEvictionLoopStopsOnShutdown(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(Options{Templates: newMemTemplates(), Productions: &memProductions{}, IdleTimeout: time.Nanosecond})
	_, err := reg.Session(ctx, "owner-1")
	require.NoError(t, err)

	reg.StartEviction(ctx, time.Millisecond)
	assert.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, reg.Shutdown())
	require.NoError(t, reg.Shutdown())
}

type cancelAwareTemplates struct {
	*memTemplates
	started chan struct{}
	release chan struct{}
}

func (c *cancelAwareTemplates) Load(ctx context.Context, owner, key string) (string, bool, error) {
	close(c.started)
	<-c.release
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return c.memTemplates.Load(ctx, owner, key)
}

func TestSessionLoadSurvivesFirstCallerCancel(t *testing.T) {
	store := &cancelAwareTemplates{memTemplates: newMemTemplates(), started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, store.Save(context.Background(), "owner-1", models.TemplateSlotKey, templateImg.DataURI()))
	reg := NewRegistry(Options{Templates: store, Productions: &memProductions{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := reg.Session(ctx, "owner-1")
		done <- err
	}()
	<-store.started
	cancel()
	close(store.release)
	require.NoError(t, <-done)

	s, err := reg.Session(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, templateImg.DataURI(), s.View().TemplateImage)
}
