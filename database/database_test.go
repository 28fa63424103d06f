package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/malshatti44/DA-Studio/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", "file::memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Shutdown() })
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "", false)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestPing(t *testing.T) {
	assert.NoError(t, openTestDB(t).Ping(context.Background()))
}

func TestTemplatesRoundTrip(t *testing.T) {
	ctx := context.Background()
	templates := NewTemplates(openTestDB(t))

	_, ok, err := templates.Load(ctx, "owner-a", models.TemplateSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, templates.Save(ctx, "owner-a", models.TemplateSlotKey, "data:image/png;base64,AAAA"))
	require.NoError(t, templates.Save(ctx, "owner-a", models.TemplateSlotKey, "data:image/png;base64,BBBB"))

	got, ok, err := templates.Load(ctx, "owner-a", models.TemplateSlotKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,BBBB", got)

	_, ok, err = templates.Load(ctx, "owner-b", models.TemplateSlotKey)
	require.NoError(t, err)
	assert.False(t, ok, "slots are per owner")

	require.NoError(t, templates.Remove(ctx, "owner-a", models.TemplateSlotKey))
	_, ok, err = templates.Load(ctx, "owner-a", models.TemplateSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, templates.Remove(ctx, "owner-a", models.TemplateSlotKey))
}

func TestProductionsHistory(t *testing.T) {
	ctx := context.Background()
	prods := NewProductions(openTestDB(t))

	for i := 1; i <= 3; i++ {
		p := &models.Production{Owner: "owner-a", RunID: uint64(i), SKU: fmt.Sprintf("1234%d", i), Status: models.StatusProcessing}
		require.NoError(t, prods.Create(ctx, p))
		if i != 2 {
			p.Status = models.StatusSuccess
			p.Caption = "caption"
		} else {
			p.Status = models.StatusFailed
			p.ErrorMessage = "boom"
		}
		require.NoError(t, prods.Finish(ctx, p))
	}
	require.NoError(t, prods.Create(ctx, &models.Production{Owner: "owner-b", RunID: 1, Status: models.StatusProcessing}))

	all, err := prods.List(ctx, "owner-a", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[0].RunID)
	assert.Equal(t, models.StatusFailed, all[1].Status)
	assert.Equal(t, "boom", all[1].ErrorMessage)

	ok, err := prods.ListSuccessful(ctx, "owner-a", 10)
	require.NoError(t, err)
	require.Len(t, ok, 2)
	for _, p := range ok {
		assert.Equal(t, "caption", p.Caption)
	}

	limited, err := prods.List(ctx, "owner-a", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
