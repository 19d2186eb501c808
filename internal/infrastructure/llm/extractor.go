package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/config"
	"StrategyScanner/internal/ports"
)

const (
	systemPrompt = "You are a professional trading strategy analyst."

	// The prompt asks for a flat JSON object; the key set has drifted across
	// revisions, which is why callers run the result through the normalizer
	// instead of decoding into a struct.
	promptTemplate = `You are an expert Quant Trader. Analyze this text for a trading strategy.

GOAL: Determine if this is a high-quality, profitable trading strategy.

EXTRACT:
- Strategy Name (e.g. 'EMA Cross with RSI')
- Strategy Type, Asset Class, Market Regime, Trading Hours
- Performance: any mention of Win Rate, CAGR, ROI, Max Drawdown, Sharpe Ratio or Profit Factor
- Quality Score: 1-10, how detailed and professional the strategy is
- Description: brief summary of why this strategy is good

Use the exact string "Not mentioned" for any metric the text does not state.

Title: %s
Text: %s

Return ONLY a JSON object with keys:
name, strategy_type, asset_class, regime, trading_hours, win, cagr, drawdown, sharpe, profit_factor, quality_score, description`

	// Long transcripts are truncated; the strategy summary is always near
	// the start or repeated throughout, and the model context is paid for.
	maxTextLen = 7000
)

// Extractor implements ports.Extractor against OpenAI-compatible chat
// completion APIs. Its output is a raw, untyped field mapping.
type Extractor struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ ports.Extractor = (*Extractor)(nil)

// NewExtractor builds a client from configuration.
func NewExtractor(cfg config.LLMConfig, client *http.Client, log zerolog.Logger) *Extractor {
	return &Extractor{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: client,
		log:        log.With().Str("component", "extractor").Logger(),
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends one item's title and text to the model and returns the field
// mapping it produced. Any malformed response is an extraction failure for
// that single item.
func (e *Extractor) Extract(ctx context.Context, title, text string) (map[string]any, error) {
	if e.apiKey == "" || e.endpoint == "" || e.model == "" {
		return nil, fmt.Errorf("extractor misconfigured")
	}

	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}

	body, err := json.Marshal(map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": fmt.Sprintf(promptTemplate, title, text)},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		e.log.Debug().Str("content", truncate(content, 200)).Msg("model returned non-JSON content")
		return nil, fmt.Errorf("parse model content: %w", err)
	}

	return fields, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
