package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"strings"
	"sync"

	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/studio"
	"golang.org/x/text/language"
)

//go:embed assets/studio.html
var studioTmpl string

//go:embed assets/gate.html
var gateTmpl string

type StudioParams struct {
	View     studio.View
	Error    string
	History  []models.Production
	Currency string
}

type GateParams struct {
	Error string
}

type Templator struct {
	studio *template.Template
	gate   *template.Template
	once   sync.Once
}

func NewTemplator() *Templator {
	return &Templator{}
}

func (g *Templator) parse() {
	funcs := template.FuncMap{
		// Replaced per render by the language-bound version.
		"t":   func(string) string { return "" },
		"dir": func() string { return "" },
		// lang is the BCP 47 tag of the render.
		"lang": func() string { return "" },
		// uri marks a data URI built by the imaging package as safe to embed.
		"uri": safeImageURI,
	}
	g.studio = template.Must(template.New("studio").Funcs(funcs).Parse(studioTmpl))
	g.gate = template.Must(template.New("gate").Funcs(funcs).Parse(gateTmpl))
}

func (g *Templator) Studio(ctx context.Context, tag language.Tag, params StudioParams) ([]byte, error) {
	g.once.Do(g.parse)
	if params.Currency == "" {
		params.Currency = models.Currency
	}
	log.FromContextOrDiscard(ctx).Debug("rendering studio page", "run", params.View.RunID)
	return render(g.studio, tag, params)
}

func (g *Templator) Gate(ctx context.Context, tag language.Tag, params GateParams) ([]byte, error) {
	g.once.Do(g.parse)
	log.FromContextOrDiscard(ctx).Debug("rendering gate page")
	return render(g.gate, tag, params)
}

// safeImageURI trusts image data URIs only; anything else is left for
// html/template to sanitize.
func safeImageURI(s string) any {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return s
}

func render(tmpl *template.Template, tag language.Tag, data any) ([]byte, error) {
	t, err := tmpl.Clone()
	if err != nil {
		return nil, err
	}
	t.Funcs(template.FuncMap{
		"t":    func(key string) string { return i18n.T(tag, key) },
		"dir":  func() string { return i18n.Dir(tag) },
		"lang": tag.String,
	})

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
