// Package render turns a conversation into the chat page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/AagmanBhatia/Oora/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// CSS classes for the two visible roles.
const (
	ClassUser      = "user-message"
	ClassAssistant = "bot-message"
)

// Options holds the page copy.
type Options struct {
	Title   string
	Tagline string
}

// Block is one rendered turn.
type Block struct {
	Role  models.Role
	Class string
	HTML  template.HTML
}

// Page is the data handed to the page template.
type Page struct {
	Title   string
	Tagline string
	Blocks  []Block
	Error   string
}

// Renderer renders conversations as HTML. It is safe for concurrent use.
type Renderer struct {
	page   *template.Template
	md     goldmark.Markdown
	policy *bluemonday.Policy
	opts   Options
}

// New parses the embedded page template.
func New(opts Options) (*Renderer, error) {
	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &Renderer{
		page:   page,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		opts:   opts,
	}, nil
}

// Blocks renders every turn after the system turn. User text is escaped
// verbatim; assistant text is treated as Markdown and sanitised.
func (r *Renderer) Blocks(turns []models.Message) []Block {
	blocks := make([]Block, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			continue
		case models.RoleUser:
			blocks = append(blocks, Block{
				Role:  t.Role,
				Class: ClassUser,
				HTML:  template.HTML(template.HTMLEscapeString(t.Content)),
			})
		case models.RoleAssistant:
			blocks = append(blocks, Block{
				Role:  t.Role,
				Class: ClassAssistant,
				HTML:  r.Markdown(t.Content),
			})
		}
	}
	return blocks
}

// Markdown converts assistant text to sanitised HTML. Text that goldmark
// cannot convert is shown escaped.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Render writes the whole page. errMsg, when set, is shown in the error banner.
func (r *Renderer) Render(w io.Writer, turns []models.Message, errMsg string) error {
	p := Page{
		Title:   r.opts.Title,
		Tagline: r.opts.Tagline,
		Blocks:  r.Blocks(turns),
		Error:   errMsg,
	}
	var buf bytes.Buffer
	if err := r.page.Execute(&buf, p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
