package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/param"
	"github.com/malshatti44/DA-Studio/studio"
)

var (
	ErrNoCredential = errors.New("no generation credential configured")
	ErrGateOpen     = errors.New("a generation credential is already selected")
)

// Capability is proof that a usable credential was selected. Studio routes
// are only reachable while the gate holds one.
type Capability struct {
	Generator  studio.Generator
	Source     string
	SelectedAt time.Time
}

// Dialer builds a generator from an API key.
type Dialer func(ctx context.Context, apiKey string) (studio.Generator, error)

type Gate struct {
	dial    Dialer
	current atomic.Pointer[Capability]
}

func NewGate(dial Dialer) *Gate {
	return &Gate{dial: dial}
}

// Capability returns the selected capability, if any.
func (g *Gate) Capability() (*Capability, bool) {
	c := g.current.Load()
	return c, c != nil
}

// Select dials apiKey and, on success, makes it the active capability. The
// gate opens once: after that every Select fails with ErrGateOpen.
func (g *Gate) Select(ctx context.Context, apiKey, source string) (*Capability, error) {
	if _, ok := g.Capability(); ok {
		return nil, ErrGateOpen
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	gen, err := g.dial(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to dial generator: %w", err)
	}

	c := &Capability{Generator: gen, Source: source, SelectedAt: time.Now()}
	if !g.current.CompareAndSwap(nil, c) {
		return nil, ErrGateOpen
	}
	log.FromContextOrDiscard(ctx).Info("generation credential selected", "source", source)
	return c, nil
}

// CredentialSource looks up an API key the host already has.
type CredentialSource struct {
	Name   string
	Lookup func(context.Context) (string, error)
}

func EnvCredential(value string) CredentialSource {
	return CredentialSource{Name: "env", Lookup: func(context.Context) (string, error) {
		return value, nil
	}}
}

func ParameterCredential(fetcher param.Fetcher, path string) CredentialSource {
	return CredentialSource{Name: "parameter store", Lookup: func(ctx context.Context) (string, error) {
		if fetcher == nil || path == "" {
			return "", nil
		}
		return fetcher.Fetch(ctx, path)
	}}
}

// Bootstrap asks each source in order and selects the first usable key. It
// returns ErrNoCredential when none is found; the gate then stays closed
// until a key is submitted.
func (g *Gate) Bootstrap(ctx context.Context, sources ...CredentialSource) error {
	logger := log.FromContextOrDiscard(ctx)
	for _, src := range sources {
		key, err := src.Lookup(ctx)
		if err != nil {
			logger.Warn("credential lookup failed", "source", src.Name, "error", err)
			continue
		}
		if strings.TrimSpace(key) == "" {
			continue
		}
		if _, err := g.Select(ctx, key, src.Name); err != nil {
			logger.Warn("credential rejected", "source", src.Name, "error", err)
			continue
		}
		return nil
	}
	logger.Info("no generation credential configured; studio is gated")
	return ErrNoCredential
}
