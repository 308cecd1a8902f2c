package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/kwlam/sitechat/internal/config"
)

const (
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

	// Prompt assembly can push large contexts; slow gateways need room.
	requestTimeout = 120 * time.Second

	completionTokens      = 500
	completionTemperature = 0.7

	probeTokens      = 50
	probeTemperature = 0.1
)

// Client sends chat completions to the configured provider.
type Client struct {
	ai         config.AISettings
	site       config.SiteSettings
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a completion client from the loaded settings.
func NewClient(cfg *config.Settings) *Client {
	transport := http.DefaultTransport
	if cfg.AI.Provider == config.ProviderCustom && cfg.AI.InsecureSkipVerify {
		// Self-hosted gateways often run behind self-signed certificates.
		// The hosted gateway always gets full verification.
		transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	return &Client{
		ai:     cfg.AI,
		site:   cfg.Site,
		apiKey: cfg.ResolveAPIKey(),
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}
}

// Complete sends the conversation and returns the assistant's reply.
// All failures come back as *Error with a classification.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, completionTokens, completionTemperature)
}

// TestConnection sends a minimal probe request so operators can verify
// credentials and connectivity from the admin surface.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	probe := []Message{{
		Role:    RoleUser,
		Content: "Hello, this is a connection test. Please reply with a short greeting.",
	}}
	return c.complete(ctx, probe, probeTokens, probeTemperature)
}

func (c *Client) complete(ctx context.Context, messages []Message, maxTokens int, temperature float32) (string, error) {
	wire := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	payload, err := json.Marshal(openai.ChatCompletionRequest{
		Model:       c.model(),
		Messages:    wire,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", &Error{Kind: ErrDecode, Detail: "encoding request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Detail: "creating request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.ai.Provider == config.ProviderOpenRouter {
		// Attribution headers the gateway uses for app rankings.
		req.Header.Set("HTTP-Referer", c.site.URL)
		req.Header.Set("X-Title", c.site.Name)
	}

	if c.ai.Debug {
		log.Printf("llm: POST %s model=%s messages=%d payload=%dB", c.endpoint(), c.model(), len(messages), len(payload))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", classifyTransport(err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &Error{Kind: ErrAuth, Status: resp.StatusCode, Detail: trimDetail(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Kind: ErrHTTP, Status: resp.StatusCode, Detail: trimDetail(body)}
	}

	if !gjson.ValidBytes(body) {
		return "", &Error{Kind: ErrDecode, Detail: "response is not valid JSON"}
	}

	content := extractContent(body)
	if content == "" {
		return "", &Error{Kind: ErrNoContent, Detail: "no assistant content in response"}
	}

	if c.ai.Debug {
		log.Printf("llm: response status=%d body=%dB content=%d chars", resp.StatusCode, len(body), len(content))
	}
	return content, nil
}

func (c *Client) endpoint() string {
	if c.ai.Provider == config.ProviderCustom {
		return c.ai.Endpoint
	}
	return openRouterEndpoint
}

func (c *Client) model() string {
	if c.ai.Model != "" {
		return c.ai.Model
	}
	if c.ai.Provider == config.ProviderCustom {
		return "gpt-3.5-turbo"
	}
	return "openai/gpt-3.5-turbo"
}

func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Detail: err.Error()}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: ErrTimeout, Detail: err.Error()}
	}
	return &Error{Kind: ErrNetwork, Detail: err.Error()}
}

func trimDetail(body []byte) string {
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(bytes.TrimSpace(body))
}
