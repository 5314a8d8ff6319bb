package services

import (
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	in := "line one   with   spaces\r\nline two\n\n\n\n\nline three\t\tindented"
	got := NormalizeText(in)

	if strings.Contains(got, "\r") {
		t.Error("carriage returns not removed")
	}
	if strings.Contains(got, "   ") {
		t.Error("space runs not collapsed")
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank line runs not collapsed")
	}
	if !strings.Contains(got, "line two") || !strings.Contains(got, "line three") {
		t.Error("content lost during normalization")
	}
}

func TestExtractPlainText(t *testing.T) {
	e := NewTextExtractor()

	result, err := e.Extract([]byte("Plain study notes about networking fundamentals."), "text/plain", "notes.txt")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if result.WordCount != 6 {
		t.Errorf("expected 6 words, got %d", result.WordCount)
	}
	if result.QualityScore < 0.5 {
		t.Errorf("expected decent quality for clean text, got %f", result.QualityScore)
	}
}

func TestEvaluateTextQuality(t *testing.T) {
	clean := strings.Repeat("Readable sentences about cloud services and exam preparation. ", 5)
	garbage := strings.Repeat("��� ", 40)

	if q := evaluateTextQuality(clean); q < 0.6 {
		t.Errorf("clean text scored %f", q)
	}
	if q := evaluateTextQuality(garbage); q > 0.3 {
		t.Errorf("corrupted text scored %f", q)
	}
	if q := evaluateTextQuality("tiny"); q != 0.1 {
		t.Errorf("short text should score 0.1, got %f", q)
	}
}
