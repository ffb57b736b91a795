package crawler

import (
	"encoding/json"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/models"
)

// ContentProcessor extracts title, meta tags and a markdown rendition
// from rendered HTML.
type ContentProcessor struct {
	converter *md.Converter
	logger    arbor.ILogger
}

// NewContentProcessor creates a new content processor
func NewContentProcessor(logger arbor.ILogger) *ContentProcessor {
	return &ContentProcessor{
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

// ProcessedContent is the extracted view of one fetched page.
type ProcessedContent struct {
	Title    string
	Markdown string
	Metadata string // JSON-serialized list of meta tags
}

// Process parses the HTML and extracts title, meta tags and markdown.
// The fetched title wins when non-empty; the <title> element is the
// fallback for pages that set it late via JavaScript.
func (p *ContentProcessor) Process(html, fetchedTitle string) (*ProcessedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(fetchedTitle)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	metadata, err := p.extractMetadata(doc)
	if err != nil {
		return nil, err
	}

	markdown, err := p.converter.ConvertString(html)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Markdown conversion failed, storing HTML only")
		markdown = ""
	}

	return &ProcessedContent{
		Title:    title,
		Markdown: markdown,
		Metadata: metadata,
	}, nil
}

// extractMetadata collects every <meta> tag's name/property/content into a
// JSON array, the same shape the page snapshot has always carried.
func (p *ContentProcessor) extractMetadata(doc *goquery.Document) (string, error) {
	metas := []models.PageMeta{}
	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, _ := s.Attr("content")
		if name == "" && property == "" && content == "" {
			return
		}
		metas = append(metas, models.PageMeta{
			Name:     name,
			Property: property,
			Content:  content,
		})
	})

	data, err := json.Marshal(metas)
	if err != nil {
		return "", fmt.Errorf("failed to serialize metadata: %w", err)
	}
	return string(data), nil
}
