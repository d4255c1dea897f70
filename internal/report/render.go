package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts the Markdown report into an HTML fragment. Raw HTML in the
// source is escaped by goldmark's default renderer.
func HTML(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Terminal renders the Markdown report for a terminal. A positive width wraps
// text at that column and squeezes tables to fit it, which can cut off cell
// contents; width <= 0 keeps every table at its natural width.
// style is a glamour standard style ("dark", "light", "notty", ...); empty
// picks one from the terminal background.
func Terminal(md string, width int, style string) (string, error) {
	if width < 0 {
		width = 0
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
