package services

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// contentRenderer turns stored Markdown into HTML that is safe to embed
type contentRenderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func newContentRenderer() *contentRenderer {
	return &contentRenderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   bluemonday.UGCPolicy(),
	}
}

func (r *contentRenderer) Render(content *string) (string, error) {
	if content == nil || *content == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(*content), &buf); err != nil {
		return "", err
	}

	return r.policy.Sanitize(buf.String()), nil
}
