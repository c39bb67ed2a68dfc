package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/config"
)

// Message is one turn of a paper conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// FullTexter supplies the full text of a paper for deep summaries.
// Implemented by the arxiv client.
type FullTexter interface {
	FullText(ctx context.Context, id string) (string, error)
}

// Client generates paper summaries and answers questions about papers.
type Client interface {
	// Summarize produces a summary at the given detail level. Level 1
	// uses the abstract only; levels 2 and 3 fetch the full paper text,
	// so paperID is required for them.
	Summarize(ctx context.Context, abstract string, level int, paperID string) (string, error)

	// BatchSummarize summarizes several papers at one level. Best
	// effort: papers whose call failed are simply absent from the map.
	BatchSummarize(ctx context.Context, papers []arxiv.Paper, level int) (map[string]string, error)

	// Chat answers a question about a paper. includeFullContext embeds
	// the paper into the prompt and should be true exactly on the
	// first message of a conversation.
	Chat(ctx context.Context, message string, paper arxiv.Paper, history []Message, includeFullContext bool) (string, error)
}

// New creates a Client from the given AI config.
func New(cfg *config.AIConfig, apiKey string, fullText FullTexter) (Client, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}

	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return &client{
			backend:  &claudeBackend{apiKey: apiKey, model: model, client: httpClient},
			fullText: fullText,
		}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return &client{
			backend:  &openaiBackend{apiKey: apiKey, model: model, baseURL: baseURL, client: httpClient},
			fullText: fullText,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}
}

const systemPrompt = "You are an expert at summarizing academic papers in an engaging, accessible way while maintaining accuracy."

const level1Prompt = `You are helping researchers browse papers quickly.

Summarize this abstract in 3-4 SHORT sentences using simple, friendly language.

Focus on:
- What problem does this research tackle?
- What's their approach or solution?
- Why should someone care about this?

Make it conversational and easy to understand, like explaining to a smart friend over coffee.
Avoid jargon unless necessary.

Abstract:
%s

Your summary:`

const level2Prompt = `You are analyzing a full research paper for someone who wants to understand the technical approach.

Extract and summarize the KEY CONTRIBUTIONS and METHODOLOGY in 4-6 concise bullet points.

Cover:
- Novel contributions or innovations
- Technical approach or methods used
- Key insights or techniques introduced
- How the method works (high-level architecture)

Be specific but concise. Use technical terms where appropriate.
Format as markdown bullet points.

Full Paper Text:
%s

Key points:`

const level3Prompt = `You are providing a comprehensive analysis of a full research paper for deep review.

Provide a thorough summary covering:

**Main Findings** (3-4 sentences)
- Specific results from experiments and evaluation, with quantitative metrics

**Technical Details** (2-3 sentences)
- Implementation details, datasets, experimental setup

**Implications & Impact** (2-3 sentences)
- Broader significance and practical applications

**Limitations & Future Work** (1-2 sentences)

Be very specific about numbers, percentages, and comparisons with baselines.

Full Paper Text:
%s

Summary:`

const chatContextPrompt = `You are answering questions about this research paper.

Title: %s
Authors: %s

Abstract:
%s

Answer the user's questions about this paper accurately and concisely. If the paper doesn't address something, say so.`

type backend interface {
	complete(ctx context.Context, system string, msgs []Message) (string, error)
}

type client struct {
	backend  backend
	fullText FullTexter
}

func (c *client) Summarize(ctx context.Context, abstract string, level int, paperID string) (string, error) {
	if level < 1 || level > 3 {
		return "", &ValidationError{Reason: fmt.Sprintf("invalid level %d (must be 1-3)", level)}
	}
	if level >= 2 && paperID == "" {
		return "", &ValidationError{Reason: fmt.Sprintf("paper id is required for level %d summaries", level)}
	}

	content := abstract
	if level >= 2 {
		// Full text unavailable or unfetchable: fall back to the
		// abstract rather than failing the whole summary.
		if text, err := c.fullText.FullText(ctx, paperID); err == nil && text != "" {
			content = text
		}
	}

	var prompt string
	switch level {
	case 1:
		prompt = fmt.Sprintf(level1Prompt, content)
	case 2:
		prompt = fmt.Sprintf(level2Prompt, content)
	case 3:
		prompt = fmt.Sprintf(level3Prompt, content)
	}

	out, err := c.backend.complete(ctx, systemPrompt, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *client) BatchSummarize(ctx context.Context, papers []arxiv.Paper, level int) (map[string]string, error) {
	if level < 1 || level > 3 {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid level %d (must be 1-3)", level)}
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		summaries = make(map[string]string, len(papers))
	)

	for _, p := range papers {
		if p.ID == "" {
			continue
		}
		wg.Add(1)
		go func(p arxiv.Paper) {
			defer wg.Done()
			text, err := c.Summarize(ctx, p.Abstract, level, p.ID)
			if err != nil {
				return
			}
			mu.Lock()
			summaries[p.ID] = text
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return summaries, nil
}

func (c *client) Chat(ctx context.Context, message string, paper arxiv.Paper, history []Message, includeFullContext bool) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &ValidationError{Reason: "empty message"}
	}

	system := systemPrompt
	if includeFullContext {
		system = fmt.Sprintf(chatContextPrompt, paper.Title, strings.Join(paper.Authors, ", "), paper.Abstract)
	}

	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: "user", Content: message})

	out, err := c.backend.complete(ctx, system, msgs)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// --- Claude backend ---

type claudeBackend struct {
	apiKey string
	model  string
	client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *claudeBackend) complete(ctx context.Context, system string, msgs []Message) (string, error) {
	cm := make([]claudeMessage, len(msgs))
	for i, m := range msgs {
		cm[i] = claudeMessage{Role: m.Role, Content: m.Content}
	}
	body, _ := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    system,
		Messages:  cm,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "claude API", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &TransportError{Op: "claude API", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(b))}
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", &TransportError{Op: "claude API", Err: err}
	}
	if len(cr.Content) == 0 {
		return "", &TransportError{Op: "claude API", Err: fmt.Errorf("empty response")}
	}
	return cr.Content[0].Text, nil
}

// --- OpenAI-compatible backend ---
//
// BaseURL is configurable so OpenAI-compatible endpoints (e.g. Gemini's
// OpenAI compatibility layer) work through the same code path.

type openaiBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type openaiRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens,omitempty"`
	Messages  []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiBackend) complete(ctx context.Context, system string, msgs []Message) (string, error) {
	om := make([]openaiMessage, 0, len(msgs)+1)
	if system != "" {
		om = append(om, openaiMessage{Role: "system", Content: system})
	}
	for _, m := range msgs {
		om = append(om, openaiMessage{Role: m.Role, Content: m.Content})
	}
	body, _ := json.Marshal(openaiRequest{
		Model:     o.model,
		MaxTokens: 1024,
		Messages:  om,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", strings.TrimSuffix(o.baseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "openai API", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &TransportError{Op: "openai API", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(b))}
	}

	var or openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", &TransportError{Op: "openai API", Err: err}
	}
	if len(or.Choices) == 0 {
		return "", &TransportError{Op: "openai API", Err: fmt.Errorf("empty response")}
	}
	return or.Choices[0].Message.Content, nil
}
