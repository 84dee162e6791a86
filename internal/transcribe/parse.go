package transcribe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/patrickprogramme/scriptratio/pkg/model"
)

// whisperOutput : JSON écrit par `whisper --output_format json`, et aussi la
// réponse verbose_json des API compatibles OpenAI (même forme).
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration,omitempty"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	// id, seek, tokens, avg_logprob... ignorés
}

// ParseWhisperJSONBytes décode une sortie whisper déjà en mémoire.
func ParseWhisperJSONBytes(b []byte) (Result, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return Result{}, fmt.Errorf("ParseWhisperJSONBytes: empty input")
	}
	return ParseWhisperJSONReader(bytes.NewReader(b))
}

// ParseWhisperJSONReader décode une sortie whisper depuis un flux.
func ParseWhisperJSONReader(r io.Reader) (Result, error) {
	var raw whisperOutput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("ParseWhisperJSONReader: decode error: %w", err)
	}
	return raw.toResult()
}

func (o whisperOutput) toResult() (Result, error) {
	res := Result{
		Language: o.Language,
		Text:     o.Text,
		Segments: make([]model.Segment, 0, len(o.Segments)),
	}
	var last float64
	for _, s := range o.Segments {
		// le texte est gardé tel quel (whisper le préfixe souvent d'un espace)
		res.Segments = append(res.Segments, model.Segment{
			Start: model.Seconds(s.Start),
			End:   model.Seconds(s.End),
			Text:  s.Text,
		})
		if s.End > last {
			last = s.End
		}
	}
	if err := model.CheckSegments(res.Segments); err != nil {
		return Result{}, fmt.Errorf("sortie whisper : %w", err)
	}
	d := o.Duration
	if d <= 0 {
		d = last
	}
	res.Duration = time.Duration(d * float64(time.Second))
	return res, nil
}
