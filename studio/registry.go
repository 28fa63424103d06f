package studio

import (
	"context"
	"sync"
	"time"

	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/storage"
	"golang.org/x/sync/singleflight"
)

const DefaultRunTimeout = 3 * time.Minute

type Options struct {
	Templates   TemplateStore
	Productions ProductionLog
	// Archive is optional.
	Archive    storage.Uploader
	RunTimeout time.Duration
	// IdleTimeout is how long an unused session stays in memory. Zero keeps
	// sessions forever.
	IdleTimeout time.Duration
}

// Registry owns the live sessions, one per owner.
type Registry struct {
	templates   TemplateStore
	productions ProductionLog
	archive     storage.Uploader
	timeout     time.Duration
	idle        time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	loads    singleflight.Group

	stopEviction chan struct{}
	stopOnce     sync.Once
	evicting     sync.WaitGroup
}

func NewRegistry(opts Options) *Registry {
	timeout := opts.RunTimeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	return &Registry{
		templates:    opts.Templates,
		productions:  opts.Productions,
		archive:      opts.Archive,
		timeout:      timeout,
		idle:         opts.IdleTimeout,
		now:          time.Now,
		sessions:     map[string]*Session{},
		stopEviction: make(chan struct{}),
	}
}

// Session returns the owner's session, creating it on first use. A new
// session starts with the template found in the owner's durable slot.
func (r *Registry) Session(ctx context.Context, owner string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[owner]
	if ok {
		s.lastSeen = r.now()
	}
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	v, err, _ := r.loads.Do(owner, func() (any, error) {
		r.mu.Lock()
		if s, ok := r.sessions[owner]; ok {
			s.lastSeen = r.now()
			r.mu.Unlock()
			return s, nil
		}
		r.mu.Unlock()

		// Callers waiting on this load must not fail because the first one
		// went away.
		ctx := context.WithoutCancel(ctx)
		s := &Session{owner: owner, reg: r}
		uri, found, err := r.templates.Load(ctx, owner, models.TemplateSlotKey)
		if err != nil {
			return nil, err
		}
		if found {
			img, err := imaging.ParseDataURI(uri)
			if err != nil {
				log.FromContextOrDiscard(ctx).Warn("ignoring unreadable stored template", "owner", owner, "error", err)
			} else {
				s.template = img
			}
		}

		r.mu.Lock()
		s.lastSeen = r.now()
		r.sessions[owner] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops sessions unused for longer than the idle timeout. Sessions
// with a run in flight are kept. A dropped owner gets a fresh session on its
// next request, reloaded from the template slot.
func (r *Registry) Evict(ctx context.Context) int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var evicted []*Session
	for owner, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.busy() {
			continue
		}
		delete(r.sessions, owner)
		evicted = append(evicted, s)
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.stop()
	}
	if len(evicted) > 0 {
		log.FromContextOrDiscard(ctx).Info("evicted idle sessions", "count", len(evicted))
	}
	return len(evicted)
}

// StartEviction runs Evict every interval until Shutdown.
func (r *Registry) StartEviction(ctx context.Context, interval time.Duration) {
	if r.idle <= 0 || interval <= 0 {
		return
	}
	r.evicting.Add(1)
	go func() {
		defer r.evicting.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopEviction:
				return
			case <-ticker.C:
				r.Evict(ctx)
			}
		}
	}()
}

// Shutdown stops eviction, cancels in-flight runs and waits for them to
// return.
func (r *Registry) Shutdown() error {
	r.stopOnce.Do(func() { close(r.stopEviction) })
	r.evicting.Wait()

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.stop()
	}
	return nil
}
