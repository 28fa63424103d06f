package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/auth"
	"github.com/malshatti44/DA-Studio/database"
	"github.com/malshatti44/DA-Studio/feed"
	"github.com/malshatti44/DA-Studio/gemini"
	handler "github.com/malshatti44/DA-Studio/handlers"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/studio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct{}

func (fakeGenerator) PrepareMarketingText(_ context.Context, d models.ProductDetails) (gemini.MarketingText, error) {
	return gemini.MarketingText{
		RephrasedTitle: "ماوس لاسلكي",
		Caption:        "ماوس لاسلكي\nالسعر: " + d.Price + " د.ك\nكود المنتج: " + d.SKU,
	}, nil
}

func (fakeGenerator) GenerateDukkanPost(_ context.Context, _, _ imaging.Image, title, _, _ string, aspect models.AspectRatio) (imaging.Image, error) {
	return imaging.Image{Data: []byte(title + "|" + string(aspect)), MIMEType: "image/png"}, nil
}

type testServer struct {
	app       *fiber.App
	gate      *auth.Gate
	sessions  *auth.Sessions
	registry  *studio.Registry
	templates *database.Templates
	cookie    *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Shutdown() })

	productions := database.NewProductions(db)
	templates := database.NewTemplates(db)
	registry := studio.NewRegistry(studio.Options{
		Templates:   templates,
		Productions: productions,
		RunTimeout:  time.Minute,
	})
	t.Cleanup(func() { _ = registry.Shutdown() })

	gate := auth.NewGate(func(_ context.Context, key string) (studio.Generator, error) {
		if key != "good" {
			return nil, errors.New("API key not valid")
		}
		return fakeGenerator{}, nil
	})
	sessions, err := auth.NewSessions(auth.SessionOpts{Secret: "test", TokenDuration: time.Hour, CookieDuration: time.Hour})
	require.NoError(t, err)

	h := handler.NewHandler(handler.Options{
		Registry: registry,
		Gate:     gate,
		History:  productions,
		Feed:     feed.NewGenerator(productions, "http://studio.test", 10),
		DB:       db,
	})
	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	SetupRoutes(app, h, sessions, gate, log.New(io.Discard, "error"))

	return &testServer{app: app, gate: gate, sessions: sessions, registry: registry, templates: templates}
}

func (s *testServer) open(t *testing.T) {
	t.Helper()
	_, err := s.gate.Select(context.Background(), "good", "test")
	require.NoError(t, err)
}

func (s *testServer) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			s.cookie = c
		}
	}
	return resp
}

func (s *testServer) session(t *testing.T) *studio.Session {
	t.Helper()
	require.NotNil(t, s.cookie)
	owner, err := s.sessions.Owner(s.cookie.Value)
	require.NoError(t, err)
	sess, err := s.registry.Session(context.Background(), owner)
	require.NoError(t, err)
	return sess
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

type state struct {
	Details    models.ProductDetails `json:"details"`
	Loading    bool                  `json:"loading"`
	Error      string                `json:"error"`
	Caption    string                `json:"caption"`
	FeedImage  string                `json:"feed_image"`
	StoryImage string                `json:"story_image"`
	CanProduce bool                  `json:"can_produce"`
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, target string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "upload.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStudioIsGated(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)
	env := decode(t, resp)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "مفتاح API")

	resp = s.do(t, httptest.NewRequest(http.MethodPost, "/api/produce", nil))
	assert.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), `action="/gate"`)

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/api/gate", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ready":false}`, string(decode(t, resp).Data))

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSelectKey(t *testing.T) {
	s := newTestServer(t)
	form := func(key string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/gate", strings.NewReader(url.Values{"apiKey": {key}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	resp := s.do(t, form("bad"))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_, ok := s.gate.Capability()
	assert.False(t, ok)

	resp = s.do(t, form("good"))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSelectKeyCannotReplaceOpenGate(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.gate.Bootstrap(context.Background(), auth.EnvCredential("good")))

	req := httptest.NewRequest(http.MethodPost, "/gate", strings.NewReader(url.Values{"apiKey": {"good"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := s.do(t, req)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	capability, ok := s.gate.Capability()
	require.True(t, ok)
	assert.Equal(t, "env", capability.Source)
}

func TestProduceFlow(t *testing.T) {
	s := newTestServer(t)
	s.open(t)

	resp := s.do(t, jsonRequest(http.MethodPut, "/api/details", `{"title":"Wireless Mouse","price":"5","sku":"12-3a45"}`))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var details struct {
		SKU        string `json:"sku"`
		CanProduce bool   `json:"can_produce"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &details))
	assert.Equal(t, "12345", details.SKU)
	assert.False(t, details.CanProduce)

	resp = s.do(t, httptest.NewRequest(http.MethodPost, "/api/produce", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "يرجى رفع صورة المنتج والقالب أولاً.", decode(t, resp).Message)

	resp = s.do(t, uploadRequest(t, "/api/product", pngBytes(t)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = s.do(t, uploadRequest(t, "/api/template", pngBytes(t)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, httptest.NewRequest(http.MethodPost, "/api/produce", nil))
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	s.session(t).Wait()

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var st state
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &st))
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Contains(t, st.Caption, "كود المنتج: 12345")
	assert.True(t, strings.HasPrefix(st.FeedImage, "data:image/png;base64,"))
	assert.True(t, strings.HasPrefix(st.StoryImage, "data:image/png;base64,"))

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/api/productions", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var prods []models.Production
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &prods))
	require.Len(t, prods, 1)
	assert.Equal(t, models.StatusSuccess, prods[0].Status)
	assert.Equal(t, "ماوس لاسلكي", prods[0].RephrasedTitle)

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/feed.rss", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")
}

func TestProduceRejectsShortSKUInEnglish(t *testing.T) {
	s := newTestServer(t)
	s.open(t)

	s.do(t, uploadRequest(t, "/api/product", pngBytes(t)))
	s.do(t, uploadRequest(t, "/api/template", pngBytes(t)))
	s.do(t, jsonRequest(http.MethodPut, "/api/details", `{"title":"Mouse","price":"5","sku":"123"}`))

	resp := s.do(t, httptest.NewRequest(http.MethodPost, "/api/produce?lang=en", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "The product code must be 5 digits.", decode(t, resp).Message)

	resp = s.do(t, httptest.NewRequest(http.MethodGet, "/api/state?lang=en", nil))
	var st state
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &st))
	assert.Equal(t, "The product code must be 5 digits.", st.Error)

	resp = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/error", nil))
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &st))
	assert.Empty(t, st.Error)
}

func TestUploadRejectsNonImages(t *testing.T) {
	s := newTestServer(t)
	s.open(t)

	resp := s.do(t, uploadRequest(t, "/api/product", []byte("not an image")))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, httptest.NewRequest(http.MethodPost, "/api/template", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTemplateSurvivesNewSession(t *testing.T) {
	s := newTestServer(t)
	s.open(t)

	resp := s.do(t, uploadRequest(t, "/api/template", pngBytes(t)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	owner, err := s.sessions.Owner(s.cookie.Value)
	require.NoError(t, err)

	fresh := studio.NewRegistry(studio.Options{Templates: s.templates})
	sess, err := fresh.Session(context.Background(), owner)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.View().TemplateImage)

	resp = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/template", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	fresh = studio.NewRegistry(studio.Options{Templates: s.templates})
	sess, err = fresh.Session(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, sess.View().TemplateImage)
}
