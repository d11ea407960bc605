// SambaNova Cloud Provider.
//
// Information Hiding:
// - OpenAI-compatible endpoint and base URL
// - top_k and the raw/format flags sent as extra request fields

package llm

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	openai "github.com/sashabaranov/go-openai"
)

const sambanovaBaseURL = "https://api.sambanova.ai/v1"

// NewSambaNovaProvider creates a provider for SambaNova Cloud.
func NewSambaNovaProvider(apiKey string, opts Options) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = sambanovaBaseURL
	return newOpenAICompatible("sambanova", withExtraBody(config, sambanovaFields(opts)), opts)
}

func sambanovaFields(opts Options) map[string]any {
	fields := map[string]any{
		"return_raw":      opts.ReturnRaw,
		"format_response": opts.FormatResponse,
	}
	if opts.TopK > 0 {
		fields["top_k"] = opts.TopK
	}
	return fields
}

// extraBodyTransport adds fields to JSON object request bodies.
// Keys already present in the body win.
type extraBodyTransport struct {
	base   http.RoundTripper
	fields map[string]any
}

func (t *extraBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body == nil || req.Method != http.MethodPost {
		return t.base.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	body := raw
	var payload map[string]any
	if json.Unmarshal(raw, &payload) == nil && payload != nil {
		for k, v := range t.fields {
			if _, exists := payload[k]; !exists {
				payload[k] = v
			}
		}
		if merged, err := json.Marshal(payload); err == nil {
			body = merged
		}
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.ContentLength = int64(len(body))
	out.Header.Set("Content-Length", strconv.Itoa(len(body)))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return t.base.RoundTrip(out)
}
