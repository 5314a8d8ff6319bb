package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"certprep-platform/internal/logger"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns uploaded document bytes into normalized plain text.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractionResult carries the extracted text plus quality metadata used to
// decide whether the document is worth processing.
type ExtractionResult struct {
	Text         string
	Pages        int
	QualityScore float64
	WordCount    int
}

// Extract dispatches on content type. PDFs go through the pdf reader, plain
// text and markdown pass through normalization directly.
func (e *TextExtractor) Extract(data []byte, contentType, filename string) (*ExtractionResult, error) {
	if isPDF(data, contentType, filename) {
		return e.extractPDF(data)
	}
	return e.extractPlain(data)
}

func isPDF(data []byte, contentType, filename string) bool {
	if strings.Contains(contentType, "pdf") || strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF"))
}

func (e *TextExtractor) extractPDF(data []byte) (*ExtractionResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract text from page", "page", i, "error", err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	normalized := NormalizeText(textBuilder.String())
	result := &ExtractionResult{
		Text:         normalized,
		Pages:        pages,
		QualityScore: evaluateTextQuality(normalized),
		WordCount:    len(strings.Fields(normalized)),
	}
	return result, nil
}

func (e *TextExtractor) extractPlain(data []byte) (*ExtractionResult, error) {
	normalized := NormalizeText(string(data))
	return &ExtractionResult{
		Text:         normalized,
		Pages:        1,
		QualityScore: evaluateTextQuality(normalized),
		WordCount:    len(strings.Fields(normalized)),
	}, nil
}

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText collapses runs of spaces and blank lines while preserving
// paragraph breaks, which downstream extraction relies on.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// evaluateTextQuality scores extracted text between 0 and 1 based on the mix
// of alphanumeric, printable and corrupted characters.
func evaluateTextQuality(text string) float64 {
	text = strings.TrimSpace(text)
	if len(text) < 10 {
		return 0.1
	}

	var alphanumeric, printable, corrupted int
	for _, r := range text {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			alphanumeric++
			printable++
		case r == ' ' || r == '\n' || r == '\t':
			printable++
		case r == '�':
			corrupted++
		case r >= 32 && r <= 126:
			printable++
		case r > 127:
			printable++
		}
	}

	total := len([]rune(text))
	if total == 0 {
		return 0.0
	}

	score := float64(printable)/float64(total)*0.4 - float64(corrupted)/float64(total)*2.0

	alphanumericRatio := float64(alphanumeric) / float64(total)
	if alphanumericRatio >= 0.3 {
		score += 0.3
	} else {
		score += alphanumericRatio
	}

	if len(text) > 100 {
		score += 0.1
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
