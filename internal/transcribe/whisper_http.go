package transcribe

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTimeout = 10 * time.Minute

// WhisperHTTP appelle un endpoint compatible OpenAI /v1/audio/transcriptions.
type WhisperHTTP struct {
	name      string
	Endpoint  string // URL complète
	Model     string
	Language  string
	APIKeyEnv string // variable d'environnement contenant la clé ; vide => pas d'en-tête
	MaxBytes  int64
	Client    *http.Client
}

// NewWhisperHTTP construit le client ; timeout <= 0 => defaultHTTPTimeout.
func NewWhisperHTTP(name, endpoint, model, language, apiKeyEnv string, timeout time.Duration) *WhisperHTTP {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &WhisperHTTP{
		name:      name,
		Endpoint:  endpoint,
		Model:     model,
		Language:  language,
		APIKeyEnv: apiKeyEnv,
		MaxBytes:  defaultMaxResponseBytes,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (w *WhisperHTTP) Name() string { return w.name }

// Probe vérifie seulement la configuration : un appel réel coûterait une transcription.
func (w *WhisperHTTP) Probe(ctx context.Context) error {
	if strings.TrimSpace(w.Endpoint) == "" {
		return fmt.Errorf("whisper-http %s : endpoint manquant", w.name)
	}
	if w.APIKeyEnv != "" && strings.TrimSpace(os.Getenv(w.APIKeyEnv)) == "" {
		return fmt.Errorf("whisper-http %s : variable %s vide", w.name, w.APIKeyEnv)
	}
	return nil
}

// Transcribe envoie le fichier en multipart (streaming via io.Pipe) et décode verbose_json.
func (w *WhisperHTTP) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("fichier audio illisible : %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(w.writeForm(mw, f, filepath.Base(audioPath)))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, pr)
	if err != nil {
		return Result{}, fmt.Errorf("whisper-http: new request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if w.APIKeyEnv != "" {
		if key := strings.TrimSpace(os.Getenv(w.APIKeyEnv)); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("whisper-http: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp, w.MaxBytes)
	if err != nil {
		return Result{}, fmt.Errorf("whisper-http: %w", err)
	}
	return ParseWhisperJSONBytes(data)
}

func (w *WhisperHTTP) writeForm(mw *multipart.Writer, audio io.Reader, filename string) error {
	fields := [][2]string{
		{"model", w.Model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
	}
	if w.Language != "" {
		fields = append(fields, [2]string{"language", w.Language})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return err
	}
	return mw.Close()
}
