package transcribe

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultMaxResponseBytes = 10_000_000

// Erreurs exportées
var (
	ErrStatus   = errors.New("unexpected HTTP status")
	ErrTooLarge = errors.New("response body too large")
)

// readBody lit la réponse en refusant les statuts non 2xx et les corps de plus de maxBytes.
// En cas d'erreur de statut, un extrait du corps est joint au message.
func readBody(resp *http.Response, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}

	// si Content-Length connu et supérieur à maxBytes -> échouer vite
	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: content-length %d exceeds limit %d", ErrTooLarge, resp.ContentLength, maxBytes)
	}

	r := io.LimitReader(resp.Body, maxBytes+1) // +1 pour détecter le dépassement
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %s: %s", ErrStatus, resp.Status, tail(string(data), 500))
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (>%d bytes)", ErrTooLarge, maxBytes)
	}
	return data, nil
}
