package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/patrickprogramme/scriptratio/pkg/model"
)

const (
	defaultGCPLanguage = "cmn-Hans-CN"
	defaultGCPTimeout  = 30 * time.Minute
	gcpMaxRetries      = 4
)

// les transcripts mélangent chinois et japonais
var gcpAlternativeLanguages = []string{"ja-JP"}

// recognizeFunc lance une reconnaissance et attend son résultat.
type recognizeFunc func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)

// GCPSpeech utilise Google Cloud Speech-to-Text v1 avec contenu audio inline.
type GCPSpeech struct {
	name     string
	Model    string // modèle GCP (latest_long, default...) ; vide => modèle par défaut
	Language string
	Timeout  time.Duration

	client    *speech.Client
	recognize recognizeFunc
	backoff   time.Duration
}

// ClientOptionsFromEnv lit les identifiants depuis credsEnv, puis
// GOOGLE_APPLICATION_CREDENTIALS_JSON et GOOGLE_APPLICATION_CREDENTIALS.
// Une valeur commençant par "{" est du JSON, sinon un chemin de fichier.
func ClientOptionsFromEnv(credsEnv string) []option.ClientOption {
	var creds string
	for _, env := range []string{credsEnv, "GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"} {
		if env == "" {
			continue
		}
		if creds = strings.TrimSpace(os.Getenv(env)); creds != "" {
			break
		}
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// NewGCPSpeech ouvre le client gRPC.
func NewGCPSpeech(ctx context.Context, name, gcpModel, language string, timeout time.Duration, opts ...option.ClientOption) (*GCPSpeech, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	g := newGCPSpeech(name, gcpModel, language, timeout, nil)
	g.client = c
	g.recognize = func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := c.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	}
	return g, nil
}

func newGCPSpeech(name, gcpModel, language string, timeout time.Duration, fn recognizeFunc) *GCPSpeech {
	if language == "" {
		language = defaultGCPLanguage
	}
	if timeout <= 0 {
		timeout = defaultGCPTimeout
	}
	return &GCPSpeech{
		name:      name,
		Model:     gcpModel,
		Language:  language,
		Timeout:   timeout,
		recognize: fn,
		backoff:   750 * time.Millisecond,
	}
}

func (g *GCPSpeech) Name() string { return g.name }

func (g *GCPSpeech) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GCPSpeech) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("fichier audio illisible : %w", err)
	}
	if len(audio) == 0 {
		return Result{Language: g.Language}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               g.Language,
			AlternativeLanguageCodes:   gcpAlternativeLanguages,
			Model:                      g.Model,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
			Encoding:                   inferSpeechEncoding(audioPath),
		},
		Audio: &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}

	resp, err := g.retry(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		return g.recognize(ctx, req)
	})
	if err != nil {
		return Result{}, fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	res := speechResult(resp)
	if res.Language == "" {
		res.Language = g.Language
	}
	return res, nil
}

// retry relance fn sur les erreurs gRPC transitoires, avec backoff exponentiel plafonné à 10s.
func (g *GCPSpeech) retry(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := g.backoff
	var last error
	for attempt := 0; attempt <= gcpMaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		if !isRetryable(err) {
			return nil, err
		}
		if attempt == gcpMaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}

func isRetryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	}
	return false
}

func inferSpeechEncoding(path string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	case ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// speechResult : un segment par résultat GCP.
// Début = premier mot (sinon fin du résultat précédent), fin = ResultEndTime (sinon dernier mot).
func speechResult(resp *speechpb.LongRunningRecognizeResponse) Result {
	var res Result
	if resp == nil {
		return res
	}

	var texts []string
	var prevEnd float64
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		text := strings.TrimSpace(alt.Transcript)
		if text == "" {
			continue
		}
		if res.Language == "" && r.LanguageCode != "" {
			res.Language = r.LanguageCode
		}

		start, end := prevEnd, durToSec(r.ResultEndTime)
		if n := len(alt.Words); n > 0 {
			if w := alt.Words[0]; w != nil && w.StartTime != nil {
				start = durToSec(w.StartTime)
			}
			if r.ResultEndTime == nil {
				if w := alt.Words[n-1]; w != nil {
					end = durToSec(w.EndTime)
				}
			}
		}
		if end < start {
			end = start
		}
		prevEnd = end

		res.Segments = append(res.Segments, model.Segment{
			Start: model.Seconds(start),
			End:   model.Seconds(end),
			Text:  text,
		})
		texts = append(texts, text)
	}
	res.Text = strings.Join(texts, " ")
	if resp.TotalBilledTime != nil {
		res.Duration = resp.TotalBilledTime.AsDuration()
	} else {
		res.Duration = time.Duration(prevEnd * float64(time.Second))
	}
	return res
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}
