package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
	"dictation-pdf/internal/infra"
)

var _ application.SpeechToText = (*ServerClient)(nil)

// ServerClient transcribes through a running whisper.cpp server's
// /inference endpoint.
type ServerClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

func NewServerClient(baseURL, language string) *ServerClient {
	return &ServerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *ServerClient) Transcribe(ctx context.Context, audio []byte, format domain.AudioFormat) (string, error) {
	if format == "" {
		format = domain.FormatWAV
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio."+string(format))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err = writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("writing format field: %w", err)
	}
	if c.language != "" {
		if err = writer.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("writing language field: %w", err)
		}
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inference", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if err := infra.CheckResponse("whisper-server", resp); err != nil {
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}
