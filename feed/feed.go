package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/samber/lo"
)

// Source lists an owner's finished productions, newest first.
type Source interface {
	ListSuccessful(ctx context.Context, owner string, limit int) ([]models.Production, error)
}

type Generator struct {
	source  Source
	baseURL string
	limit   int
}

func NewGenerator(source Source, baseURL string, limit int) *Generator {
	if limit <= 0 {
		limit = 20
	}
	return &Generator{source: source, baseURL: strings.TrimSuffix(baseURL, "/"), limit: limit}
}

// Generate renders the owner's archived posts as RSS. Runs that were never
// archived have no link to share and are left out.
func (g *Generator) Generate(ctx context.Context, owner, title string) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed", "owner", owner)

	prods, err := g.source.ListSuccessful(ctx, owner, g.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list productions: %w", err)
	}

	feed := feeds.Feed{
		Title:       title,
		Description: "Dukkan Assima",
		Link:        &feeds.Link{Href: g.baseURL + "/"},
	}

	archived := lo.Filter(prods, func(p models.Production, _ int) bool {
		return p.FeedURL != ""
	})
	for _, p := range archived {
		name := lo.Ternary(p.RephrasedTitle != "", p.RephrasedTitle, p.Title)
		feed.Add(&feeds.Item{
			Id:          strconv.FormatUint(uint64(p.ID), 10),
			Title:       fmt.Sprintf("%s (%s)", name, p.SKU),
			Link:        &feeds.Link{Href: p.FeedURL},
			Description: p.Caption,
			Enclosure:   &feeds.Enclosure{Url: p.StoryURL, Type: "image/png", Length: "0"},
			Created:     p.CreatedAt,
			Updated:     p.UpdatedAt,
		})
		if feed.Updated.Before(p.UpdatedAt) {
			feed.Updated = p.UpdatedAt
		}
	}

	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Created.After(b.Created)
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}
