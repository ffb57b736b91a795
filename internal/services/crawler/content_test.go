package crawler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/models"
)

func TestProcessTitlePreference(t *testing.T) {
	p := NewContentProcessor(arbor.NewLogger())

	html := `<html><head><title>Document Title</title></head><body></body></html>`

	// Fetched title wins when present.
	content, err := p.Process(html, "Rendered Title")
	require.NoError(t, err)
	assert.Equal(t, "Rendered Title", content.Title)

	// Falls back to the <title> element.
	content, err = p.Process(html, "")
	require.NoError(t, err)
	assert.Equal(t, "Document Title", content.Title)

	// Whitespace-only fetched title counts as empty.
	content, err = p.Process(html, "   ")
	require.NoError(t, err)
	assert.Equal(t, "Document Title", content.Title)
}

func TestProcessExtractsMetadata(t *testing.T) {
	p := NewContentProcessor(arbor.NewLogger())

	html := `<html><head>
		<meta name="description" content="Page summary">
		<meta property="og:title" content="Social Title">
		<meta charset="utf-8">
	</head><body></body></html>`

	content, err := p.Process(html, "t")
	require.NoError(t, err)

	var metas []models.PageMeta
	require.NoError(t, json.Unmarshal([]byte(content.Metadata), &metas))
	require.Len(t, metas, 2, "charset-only meta carries no name/property/content")

	assert.Equal(t, "description", metas[0].Name)
	assert.Equal(t, "Page summary", metas[0].Content)
	assert.Equal(t, "og:title", metas[1].Property)
	assert.Equal(t, "Social Title", metas[1].Content)
}

func TestProcessNoMetadataYieldsEmptyArray(t *testing.T) {
	p := NewContentProcessor(arbor.NewLogger())

	content, err := p.Process(`<html><body><p>bare</p></body></html>`, "t")
	require.NoError(t, err)
	assert.Equal(t, "[]", content.Metadata)
}

func TestProcessMarkdownConversion(t *testing.T) {
	p := NewContentProcessor(arbor.NewLogger())

	html := `<html><body><h1>Heading</h1><p>Some <strong>bold</strong> text.</p></body></html>`

	content, err := p.Process(html, "t")
	require.NoError(t, err)

	assert.True(t, strings.Contains(content.Markdown, "# Heading"), "markdown: %q", content.Markdown)
	assert.True(t, strings.Contains(content.Markdown, "**bold**"), "markdown: %q", content.Markdown)
}
