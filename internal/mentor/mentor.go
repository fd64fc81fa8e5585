// Package mentor implements the generative operations of the mentor app:
// conversational replies and structured course outlines, each bound to
// its own credential pool.
package mentor

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentorkit/mentor/internal/genai"
	"github.com/mentorkit/mentor/internal/keypool"
)

// Default generation settings; the config file overrides them.
const (
	DefaultChatModel       = genai.DefaultModel
	DefaultOutlineModel    = genai.DefaultModel
	DefaultMaxOutputTokens = 800
	DefaultTemperature     = 0.6
)

// outlineTemperature stays low so the model holds the tree shape.
const outlineTemperature = 0.2

// chatSystemPrompt sets the conversational persona.
const chatSystemPrompt = `You are a friendly, encouraging study mentor.
Answer as a tutor would: concise explanations, concrete examples, and a
follow-up question when it helps the learner move forward. Use plain
language and keep answers short unless asked for more.`

// outlinePromptTemplate asks for a fixed-shape ASCII tree.
const outlinePromptTemplate = `Create a course outline for studying: %s

Format the outline as a plain ASCII tree using exactly this shape:

Course: <title>
├── 1. <unit>
│   ├── 1.1 <topic>
│   │   ├── 1.1.1 <subtopic>

Rules:
- at most three levels below the course title
- 3 to 6 top-level units
- no prose before or after the tree
- ASCII tree characters only, no Markdown`

// Service runs generative operations against resolved credential pools.
type Service struct {
	client          *genai.Client
	pools           *keypool.Pools
	chatModel       string
	outlineModel    string
	maxOutputTokens int
	temperature     float64
}

// Option configures the Service.
type Option func(*Service)

// WithChatModel overrides the conversational model.
func WithChatModel(model string) Option {
	return func(s *Service) {
		s.chatModel = model
	}
}

// WithOutlineModel overrides the outline model.
func WithOutlineModel(model string) Option {
	return func(s *Service) {
		s.outlineModel = model
	}
}

// WithMaxOutputTokens bounds generated reply length.
func WithMaxOutputTokens(n int) Option {
	return func(s *Service) {
		s.maxOutputTokens = n
	}
}

// WithTemperature sets the conversational sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

// NewService creates a Service over an API client and resolved pools.
func NewService(client *genai.Client, pools *keypool.Pools, opts ...Option) *Service {
	s := &Service{
		client:          client,
		pools:           pools,
		chatModel:       DefaultChatModel,
		outlineModel:    DefaultOutlineModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		temperature:     DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChatReply produces the next mentor turn for a conversation. History is
// ordered oldest first with the user's latest message last.
func (s *Service) ChatReply(ctx context.Context, history []genai.Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("empty conversation history")
	}

	req := genai.Request{
		Model:           s.chatModel,
		Messages:        history,
		System:          chatSystemPrompt,
		MaxOutputTokens: s.maxOutputTokens,
		Temperature:     s.temperature,
		Safety:          genai.PermissiveSafety(),
	}
	return s.generate(ctx, keypool.PoolText, req)
}

// CourseOutline produces an ASCII-tree study plan for a topic.
func (s *Service) CourseOutline(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("empty outline topic")
	}

	req := genai.Request{
		Model: s.outlineModel,
		Messages: []genai.Message{
			{Role: genai.RoleUser, Text: fmt.Sprintf(outlinePromptTemplate, topic)},
		},
		MaxOutputTokens: s.maxOutputTokens,
		Temperature:     outlineTemperature,
		Safety:          genai.PermissiveSafety(),
	}
	return s.generate(ctx, keypool.PoolStructuredOutput, req)
}

// generate runs the request under the pool's fallback policy, then
// extracts the reply text. Safety blocks surface from the extraction, not
// from the key rotation: a blocked reply is a successful call upstream
// and no other credential would change it.
func (s *Service) generate(ctx context.Context, pool string, req genai.Request) (string, error) {
	resp, err := keypool.Invoke(ctx, s.pools, pool,
		func(ctx context.Context, apiKey string) (*genai.Response, error) {
			return s.client.GenerateContent(ctx, apiKey, req)
		})
	if err != nil {
		return "", err
	}
	return resp.Text()
}
