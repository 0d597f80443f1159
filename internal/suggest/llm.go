package suggest

import (
	"context"
	"fmt"
	"strings"

	"kudos/internal/config"
)

// PolishWithLLM optionally rewords a rendered template through an LLM
// provider. On any failure the template text is returned unchanged, so the
// polish step can never block staging.
func PolishWithLLM(ctx context.Context, cfg config.LLMConfig, userName, draft string) (string, error) {
	if strings.ToLower(cfg.Provider) != "openai" || cfg.APIKey == "" {
		return draft, nil
	}
	payload := fmt.Sprintf(`{"model":"%s","input":[{"role":"user","content":[{"type":"text","text":"Rewrite this Japanese thank-you comment to %s so it sounds warm and natural. Keep it under 100 characters and keep the meaning: %s"}]}]}`, cfg.Model, escapeJSON(userName), escapeJSON(draft))
	req, err := httpNewRequest(ctx, "https://api.openai.com/v1/responses", "POST", payload)
	if err != nil { return draft, err }
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpDo(req)
	if err != nil { return draft, err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 { return draft, fmt.Errorf("llm status %d", resp.StatusCode) }
	text, err := parseOpenAIResponse(resp)
	if err != nil || strings.TrimSpace(text) == "" {
		return draft, err
	}
	return strings.TrimSpace(text), nil
}

// --- light http helpers (decoupled for testability) ---

var httpNewRequest = defaultNewRequest
var httpDo = defaultDo

// escapeJSON is minimal, for controlled prompts
func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
