package utils

import (
	"strings"
	"testing"
)

func TestCompressTextRoundTrip(t *testing.T) {
	text := strings.Repeat("exam preparation content with plenty of repetition ", 100)

	compressed, algorithm, err := CompressText(text)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if algorithm != CompressionGzip {
		t.Errorf("expected gzip for large text, got %s", algorithm)
	}
	if len(compressed) >= len(text) {
		t.Errorf("compression did not shrink text: %d >= %d", len(compressed), len(text))
	}

	restored, err := DecompressText(compressed, algorithm)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if restored != text {
		t.Error("round trip lost data")
	}
}

func TestCompressTextSmallPayloadSkipsCompression(t *testing.T) {
	text := "short"

	compressed, algorithm, err := CompressText(text)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if algorithm != CompressionNone {
		t.Errorf("expected none for small text, got %s", algorithm)
	}
	if string(compressed) != text {
		t.Error("small payload should pass through unchanged")
	}
}

func TestDecompressDataUnknownAlgorithm(t *testing.T) {
	if _, err := DecompressData([]byte("data"), CompressionAlgorithm("lz4")); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}
