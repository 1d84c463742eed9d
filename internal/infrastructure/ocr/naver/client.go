// Package naver implements OCR against the Naver Clova OCR REST API.
package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/infrastructure/resilience"
)

type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
	exec       *resilience.Executor
	now        func() time.Time
}

func New(apiURL, secretKey string, exec *resilience.Executor) *Client {
	return &Client{
		apiURL:     apiURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		exec:       exec,
		now:        time.Now,
	}
}

type ocrRequest struct {
	Images    []ocrImage `json:"images"`
	RequestID string     `json:"requestId"`
	Version   string     `json:"version"`
	Timestamp int64      `json:"timestamp"`
}

type ocrImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

type ocrResponse struct {
	Images []struct {
		Fields []struct {
			InferText       string  `json:"inferText"`
			InferConfidence float64 `json:"inferConfidence"`
		} `json:"fields"`
	} `json:"images"`
}

// Recognize runs one image through Clova OCR and folds the per-field
// results into a single text with an average confidence.
func (c *Client) Recognize(ctx context.Context, content []byte, filename string) (domain.OCRExtraction, error) {
	if len(content) == 0 {
		return domain.OCRExtraction{}, domain.WrapError(domain.ErrInvalidInput, "ocr recognize",
			fmt.Errorf("empty image %q", filename))
	}

	var response ocrResponse
	call := func(callCtx context.Context) error {
		return c.post(callCtx, content, filename, &response)
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, "naver_ocr", call, classifyOCRError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.OCRExtraction{}, err
	}

	extraction := domain.OCRExtraction{Engine: domain.EngineNaver}
	if len(response.Images) == 0 {
		return extraction, nil
	}

	var builder strings.Builder
	total := 0.0
	fields := response.Images[0].Fields
	for _, field := range fields {
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(field.InferText)
		total += field.InferConfidence
	}

	extraction.Text = strings.TrimSpace(builder.String())
	extraction.FieldCount = len(fields)
	if len(fields) > 0 {
		extraction.Confidence = total / float64(len(fields))
	}
	return extraction, nil
}

func (c *Client) post(ctx context.Context, content []byte, filename string, out *ocrResponse) error {
	format := imageFormat(filename)
	message := ocrRequest{
		Images:    []ocrImage{{Format: format, Name: "medical_ad_image"}},
		RequestID: "ocr-" + c.now().UTC().Format("20060102150405"),
		Version:   "V2",
		Timestamp: 0,
	}
	messageJSON, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal ocr message: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// Clova expects the message part without a filename and the image
	// part with one.
	messageHeader := textproto.MIMEHeader{}
	messageHeader.Set("Content-Disposition", `form-data; name="message"`)
	messageHeader.Set("Content-Type", "application/json")
	messagePart, err := writer.CreatePart(messageHeader)
	if err != nil {
		return fmt.Errorf("create message part: %w", err)
	}
	if _, err := messagePart.Write(messageJSON); err != nil {
		return fmt.Errorf("write message part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	fileHeader.Set("Content-Type", "image/"+format)
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := filePart.Write(content); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-OCR-SECRET", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("naver ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ocr response: %w", err)
	}
	return nil
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("OCR API 오류: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("OCR API 오류: HTTP %d - %s", e.StatusCode, e.Body)
}

func imageFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "jpg"
	default:
		return "png"
	}
}
