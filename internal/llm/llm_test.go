package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOpenAIBase = "https://openai.test/v1"
	testGeminiBase = "https://gemini.test"
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func testOptions(key string) Options {
	return Options{
		APIKey:            key,
		OpenAIBaseURL:     testOpenAIBase,
		ChatModel:         "gpt-4o-mini",
		TranscribeModel:   "whisper-1",
		GeminiBaseURL:     testGeminiBase,
		GeminiModel:       "gemini-1.5-flash",
		Timeout:           5 * time.Second,
		FileActiveTimeout: 2 * time.Second,
	}
}

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("RIFF....WAVEfmt fake audio"), 0o644))
	return p
}

func TestSelect(t *testing.T) {
	assert.Equal(t, KindOpenAI, Select("sk-proj-abc"))
	assert.Equal(t, KindOpenAI, Select("  sk-abc"))
	assert.Equal(t, KindGemini, Select("AIzaSyExample"))
	assert.Equal(t, KindGemini, Select("SK-upper-is-not-openai"))
	assert.Equal(t, KindGemini, Select(""))
}

func TestAudioMIMEType(t *testing.T) {
	assert.Equal(t, "audio/wav", AudioMIMEType("standup.WAV"))
	assert.Equal(t, "audio/mpeg", AudioMIMEType("/tmp/x.mp3"))
	assert.Equal(t, "application/octet-stream", AudioMIMEType("blob"))
}

func TestOpenAIComplete_JSONMode(t *testing.T) {
	setupHTTPMock(t)

	var captured openAIChatRequest
	httpmock.RegisterResponder(http.MethodPost, testOpenAIBase+"/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&captured))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"},"finish_reason":"stop"}]}`), nil
		})

	c := NewOpenAI(testOptions("sk-test"))
	out, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "hello", JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)
	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "hello", captured.Messages[1].Content)
	assert.Equal(t, "json_object", captured.ResponseFormat["type"])
}

func TestOpenAIComplete_TextModeOmitsResponseFormat(t *testing.T) {
	setupHTTPMock(t)

	var raw map[string]any
	httpmock.RegisterResponder(http.MethodPost, testOpenAIBase+"/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&raw))
			return httpmock.NewStringResponse(http.StatusOK, `{"choices":[{"message":{"content":"Bonjour"}}]}`), nil
		})

	out, err := NewOpenAI(testOptions("sk-test")).Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
	assert.NotContains(t, raw, "response_format")
}

func TestOpenAIComplete_Errors(t *testing.T) {
	setupHTTPMock(t)
	c := NewOpenAI(testOptions("sk-test"))

	httpmock.RegisterResponder(http.MethodPost, testOpenAIBase+"/chat/completions",
		httpmock.NewStringResponder(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`))
	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatusCode())
	assert.Contains(t, err.Error(), "rate limited")

	httpmock.Reset()
	httpmock.RegisterResponder(http.MethodPost, testOpenAIBase+"/chat/completions",
		httpmock.NewStringResponder(http.StatusOK, `{"choices":[]}`))
	_, err = c.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAITranscribe(t *testing.T) {
	setupHTTPMock(t)
	path := writeAudio(t, "standup.wav")

	httpmock.RegisterResponder(http.MethodPost, testOpenAIBase+"/audio/transcriptions",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", req.FormValue("model"))
			assert.Equal(t, "text", req.FormValue("response_format"))
			fh := req.MultipartForm.File["file"]
			require.Len(t, fh, 1)
			assert.Equal(t, "standup.wav", fh[0].Filename)
			return httpmock.NewStringResponse(http.StatusOK, "We will ship the report by next Friday.\n"), nil
		})

	text, err := NewOpenAI(testOptions("sk-test")).Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "We will ship the report by next Friday.\n", text)
}

func TestOpenAITranscribe_MissingFile(t *testing.T) {
	_, err := NewOpenAI(testOptions("sk-test")).Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open audio")
}

func TestGeminiComplete(t *testing.T) {
	setupHTTPMock(t)

	var captured geminiGenerateRequest
	httpmock.RegisterResponder(http.MethodPost, testGeminiBase+"/v1beta/models/gemini-1.5-flash:generateContent",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "AIza-test", req.Header.Get("x-goog-api-key"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&captured))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hola "},{"text":"mundo"}]},"finishReason":"STOP"}]}`), nil
		})

	out, err := NewGemini(testOptions("AIza-test")).Complete(context.Background(), Request{System: "be brief", Prompt: "translate"})
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", out)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "be brief", captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "translate", captured.Contents[0].Parts[0].Text)
}

func TestGeminiComplete_NoCandidates(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodPost, testGeminiBase+"/v1beta/models/gemini-1.5-flash:generateContent",
		httpmock.NewStringResponder(http.StatusOK, `{"candidates":[]}`))

	_, err := NewGemini(testOptions("AIza-test")).Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func registerGeminiUpload(t *testing.T, initialState string) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, testGeminiBase+"/upload/v1beta/files",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "resumable", req.Header.Get("X-Goog-Upload-Protocol"))
			assert.Equal(t, "start", req.Header.Get("X-Goog-Upload-Command"))
			assert.Equal(t, "audio/wav", req.Header.Get("X-Goog-Upload-Header-Content-Type"))
			resp := httpmock.NewStringResponse(http.StatusOK, "")
			resp.Header.Set("X-Goog-Upload-URL", "https://upload.gemini.test/session/1")
			return resp, nil
		})
	httpmock.RegisterResponder(http.MethodPost, "https://upload.gemini.test/session/1",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "upload, finalize", req.Header.Get("X-Goog-Upload-Command"))
			b, _ := io.ReadAll(req.Body)
			assert.Contains(t, string(b), "fake audio")
			return httpmock.NewStringResponse(http.StatusOK,
				`{"file":{"name":"files/abc","uri":"https://gemini.test/v1beta/files/abc","mimeType":"audio/wav","state":"`+initialState+`"}}`), nil
		})
}

func TestGeminiUploadAndWaitActive(t *testing.T) {
	setupHTTPMock(t)
	registerGeminiUpload(t, "PROCESSING")

	var polls int32
	httpmock.RegisterResponder(http.MethodGet, testGeminiBase+"/v1beta/files/abc",
		func(req *http.Request) (*http.Response, error) {
			state := "PROCESSING"
			if atomic.AddInt32(&polls, 1) >= 2 {
				state = "ACTIVE"
			}
			return httpmock.NewStringResponse(http.StatusOK,
				`{"name":"files/abc","uri":"https://gemini.test/v1beta/files/abc","state":"`+state+`"}`), nil
		})

	c := NewGemini(testOptions("AIza-test"))
	c.pollInterval = time.Millisecond

	f, err := c.UploadFile(context.Background(), writeAudio(t, "standup.wav"))
	require.NoError(t, err)
	assert.Equal(t, "PROCESSING", f.State)

	active, err := c.WaitActive(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", active.State)
	assert.Equal(t, "audio/wav", active.MimeType)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestGeminiWaitActive_Failed(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testGeminiBase+"/v1beta/files/abc",
		httpmock.NewStringResponder(http.StatusOK, `{"name":"files/abc","state":"FAILED"}`))

	c := NewGemini(testOptions("AIza-test"))
	c.pollInterval = time.Millisecond

	_, err := c.WaitActive(context.Background(), &File{Name: "files/abc", State: "PROCESSING"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing failed")
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["GET "+testGeminiBase+"/v1beta/files/abc"])
}

func TestGeminiWaitActive_AlreadyActiveSkipsPolling(t *testing.T) {
	c := NewGemini(testOptions("AIza-test"))
	f := &File{Name: "files/abc", State: "ACTIVE"}
	got, err := c.WaitActive(context.Background(), f)
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestGeminiUpload_MissingUploadURL(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodPost, testGeminiBase+"/upload/v1beta/files",
		httpmock.NewStringResponder(http.StatusOK, ""))

	_, err := NewGemini(testOptions("AIza-test")).UploadFile(context.Background(), writeAudio(t, "a.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing X-Goog-Upload-URL")
}

func TestGeminiGenerateFromFile(t *testing.T) {
	setupHTTPMock(t)

	var captured geminiGenerateRequest
	httpmock.RegisterResponder(http.MethodPost, testGeminiBase+"/v1beta/models/gemini-1.5-flash:generateContent",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&captured))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"candidates":[{"content":{"parts":[{"text":"verbatim words"}]}}]}`), nil
		})

	f := &File{Name: "files/abc", URI: "https://gemini.test/v1beta/files/abc", MimeType: "audio/wav"}
	out, err := NewGemini(testOptions("AIza-test")).GenerateFromFile(context.Background(), "Transcribe verbatim", f)
	require.NoError(t, err)
	assert.Equal(t, "verbatim words", out)

	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "Transcribe verbatim", parts[0].Text)
	require.NotNil(t, parts[1].FileData)
	assert.Equal(t, f.URI, parts[1].FileData.FileURI)
	assert.Equal(t, "audio/wav", parts[1].FileData.MimeType)
}
