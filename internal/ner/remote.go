package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redactyl/gdprmask/internal/types"
)

// DefaultRemoteTimeout bounds one inference request when the caller does
// not supply its own client.
const DefaultRemoteTimeout = 30 * time.Second

// Remote talks to an external CLASSLA-style tagging service:
//
//	POST {endpoint}  {"text": "...", "language": "sl"}
//	200              {"entities": [{"start": 0, "end": 3, "label": "B-PER"}]}
//
// Offsets in the reply are rune offsets.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote returns a client for endpoint. A nil client gets a default one
// with DefaultRemoteTimeout.
func NewRemote(endpoint string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: DefaultRemoteTimeout}
	}
	return &Remote{endpoint: endpoint, client: client}
}

// Load satisfies Loader: it binds the client to one language.
func (r *Remote) Load(_ context.Context, lang types.Language) (Model, error) {
	if r.endpoint == "" {
		return nil, fmt.Errorf("remote ner: empty endpoint")
	}
	return &remoteModel{r: r, lang: lang}, nil
}

type remoteRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type remoteResponse struct {
	Entities []Entity `json:"entities"`
}

type remoteModel struct {
	r    *Remote
	lang types.Language
}

func (m *remoteModel) Infer(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(remoteRequest{Text: text, Language: string(m.lang)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote ner: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := m.r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote ner: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote ner: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("remote ner: decode reply: %w", err)
	}
	return out.Entities, nil
}
