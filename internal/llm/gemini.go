package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	geminiFileActive      = "ACTIVE"
	geminiFileFailed      = "FAILED"
	geminiUploadURLHeader = "X-Goog-Upload-URL"
)

var errFileNotReady = errors.New("file not ready")

// Gemini talks to the generateContent and Files endpoints.
type Gemini struct {
	apiKey        string
	baseURL       string
	model         string
	activeTimeout time.Duration
	pollInterval  time.Duration
	httpClient    *http.Client
}

func NewGemini(opts Options) *Gemini {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	activeTimeout := opts.FileActiveTimeout
	if activeTimeout <= 0 {
		activeTimeout = time.Minute
	}
	return &Gemini{
		apiKey:        opts.APIKey,
		baseURL:       strings.TrimRight(opts.GeminiBaseURL, "/"),
		model:         opts.GeminiModel,
		activeTimeout: activeTimeout,
		pollInterval:  500 * time.Millisecond,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (c *Gemini) Name() string { return string(KindGemini) }

// File is an uploaded file object.
type File struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	State    string `json:"state"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"fileData,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// Complete runs one generateContent call. Gemini is asked for free text; req.JSON
// only matters to the caller's parser.
func (c *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	body := geminiGenerateRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	return c.generate(ctx, body)
}

// GenerateFromFile asks the model to act on a previously uploaded file.
func (c *Gemini) GenerateFromFile(ctx context.Context, prompt string, f *File) (string, error) {
	body := geminiGenerateRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{FileData: &geminiFileData{MimeType: f.MimeType, FileURI: f.URI}},
			},
		}},
	}
	return c.generate(ctx, body)
}

func (c *Gemini) generate(ctx context.Context, body geminiGenerateRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(c.Name(), resp.StatusCode, resp.Body)
	}

	var out geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// UploadFile pushes a local file through the resumable upload protocol and
// returns the remote file object. The remote copy is left to expire on its own.
func (c *Gemini) UploadFile(ctx context.Context, path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	mimeType := AudioMIMEType(path)

	meta, _ := json.Marshal(map[string]any{
		"file": map[string]string{"display_name": uuid.NewString() + filepath.Ext(path)},
	})
	startReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/v1beta/files", bytes.NewReader(meta))
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	startReq.Header.Set("x-goog-api-key", c.apiKey)
	startReq.Header.Set("Content-Type", "application/json")
	startReq.Header.Set("X-Goog-Upload-Protocol", "resumable")
	startReq.Header.Set("X-Goog-Upload-Command", "start")
	startReq.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(len(data)))
	startReq.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	startResp, err := c.httpClient.Do(startReq)
	if err != nil {
		return nil, fmt.Errorf("start upload: %w", err)
	}
	defer startResp.Body.Close()
	if startResp.StatusCode != http.StatusOK {
		return nil, newAPIError(c.Name(), startResp.StatusCode, startResp.Body)
	}
	uploadURL := startResp.Header.Get(geminiUploadURLHeader)
	if uploadURL == "" {
		return nil, fmt.Errorf("start upload: missing %s header", geminiUploadURLHeader)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	putReq.Header.Set("X-Goog-Upload-Offset", "0")
	putReq.Header.Set("X-Goog-Upload-Command", "upload, finalize")

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return nil, fmt.Errorf("upload bytes: %w", err)
	}
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		return nil, newAPIError(c.Name(), putResp.StatusCode, putResp.Body)
	}

	var out struct {
		File File `json:"file"`
	}
	if err := json.NewDecoder(putResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if out.File.URI == "" {
		return nil, fmt.Errorf("upload response has no file uri")
	}
	if out.File.MimeType == "" {
		out.File.MimeType = mimeType
	}
	return &out.File, nil
}

// WaitActive polls the file until the service reports it ACTIVE. Audio files
// usually start in PROCESSING.
func (c *Gemini) WaitActive(ctx context.Context, f *File) (*File, error) {
	if f.State == "" || f.State == geminiFileActive {
		return f, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.pollInterval
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = c.activeTimeout

	current := f
	op := func() error {
		got, err := c.getFile(ctx, f.Name)
		if err != nil {
			return backoff.Permanent(err)
		}
		switch got.State {
		case geminiFileActive:
			current = got
			return nil
		case geminiFileFailed:
			return backoff.Permanent(fmt.Errorf("file %s processing failed", f.Name))
		default:
			return errFileNotReady
		}
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, errFileNotReady) {
			return nil, fmt.Errorf("file %s not active after %s", f.Name, c.activeTimeout)
		}
		return nil, err
	}
	if current.MimeType == "" {
		current.MimeType = f.MimeType
	}
	return current, nil
}

func (c *Gemini) getFile(ctx context.Context, name string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(c.Name(), resp.StatusCode, resp.Body)
	}
	var f File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	return &f, nil
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".aiff": "audio/aiff",
}

// AudioMIMEType guesses the MIME type from the file extension.
func AudioMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
