package naver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medscreen/adscreen/internal/core/domain"
)

func TestRecognizeFoldsFieldsIntoText(t *testing.T) {
	var secret string
	var message ocrRequest
	var fileFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get("X-OCR-SECRET")
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("message")), &message); err != nil {
			t.Fatalf("decode message part: %v", err)
		}
		if _, header, err := r.FormFile("file"); err == nil {
			fileFilename = header.Filename
		} else {
			t.Fatalf("file part missing: %v", err)
		}
		_, _ = w.Write([]byte(`{"images":[{"fields":[
			{"inferText":"100%","inferConfidence":0.99},
			{"inferText":"효과","inferConfidence":0.97},
			{"inferText":"보장","inferConfidence":0.98}
		]}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret-key", nil)
	extraction, err := client.Recognize(context.Background(), []byte("img-bytes"), "광고.jpg")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if extraction.Text != "100% 효과 보장" {
		t.Fatalf("fields not joined: %q", extraction.Text)
	}
	if extraction.FieldCount != 3 {
		t.Fatalf("expected 3 fields, got %d", extraction.FieldCount)
	}
	if math.Abs(extraction.Confidence-0.98) > 1e-9 {
		t.Fatalf("expected average confidence 0.98, got %f", extraction.Confidence)
	}
	if extraction.Engine != domain.EngineNaver {
		t.Fatalf("engine = %s", extraction.Engine)
	}

	if secret != "secret-key" {
		t.Fatalf("X-OCR-SECRET missing, got %q", secret)
	}
	if message.Version != "V2" || len(message.Images) != 1 || message.Images[0].Format != "jpg" {
		t.Fatalf("unexpected message payload: %+v", message)
	}
	if !strings.HasPrefix(message.RequestID, "ocr-") {
		t.Fatalf("request id = %q", message.RequestID)
	}
	if fileFilename != "광고.jpg" {
		t.Fatalf("file part filename = %q", fileFilename)
	}
}

func TestRecognizeDefaultsToPNGFormat(t *testing.T) {
	var message ocrRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(10 << 20)
		_ = json.Unmarshal([]byte(r.FormValue("message")), &message)
		_, _ = w.Write([]byte(`{"images":[{"fields":[]}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret", nil)
	extraction, err := client.Recognize(context.Background(), []byte("img"), "scan.webp")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if message.Images[0].Format != "png" {
		t.Fatalf("unknown extensions should fall back to png, got %q", message.Images[0].Format)
	}
	if extraction.Text != "" || extraction.FieldCount != 0 || extraction.Confidence != 0 {
		t.Fatalf("empty field list should produce an empty extraction: %+v", extraction)
	}
}

func TestRecognizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid secret", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "wrong", nil)
	_, err := client.Recognize(context.Background(), []byte("img"), "a.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "OCR API 오류: HTTP 401") || !strings.Contains(err.Error(), "invalid secret") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecognizeRejectsEmptyContent(t *testing.T) {
	client := New("http://unreachable.invalid", "secret", nil)
	_, err := client.Recognize(context.Background(), nil, "a.png")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
