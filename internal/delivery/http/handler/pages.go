package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageOAuthSuccess = "oauth_success"
	pageOAuthError   = "oauth_error"
)

// Pages renders the HTML documents served by the LinkedIn callback.
type Pages struct {
	tmpl *template.Template
}

func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

type successPage struct {
	RedirectURL string
	Delay       int
	DelayMillis int
}

type queryParam struct {
	Key   string
	Value string
}

type errorPage struct {
	Message     string
	QueryParams []queryParam
	FullURL     string
	Error       string
	State       string
	ReturnURL   string
}

func sortedParams(params map[string]string) []queryParam {
	out := make([]queryParam, 0, len(params))
	for key, value := range params {
		out = append(out, queryParam{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (p *Pages) render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s page: %w", name, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
