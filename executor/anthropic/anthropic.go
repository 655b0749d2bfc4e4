// Package anthropic provides an executor backed by the Anthropic Messages
// API. Each pool slot corresponds to one in-flight request; the dispatched
// payload must be a prompt string and the produced outputs are the
// concatenated text blocks of the response.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/hupe1980/inferpipe/core"
)

// Options configures the Anthropic executor (model id, temperature, max
// tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

type slot struct {
	id string
}

// ID returns the slot identifier.
func (s slot) ID() string { return s.id }

// Executor adapts the Anthropic Messages API to the core.Executor interface.
type Executor struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic executor using the official client.
func New(optFns ...func(o *Options)) *Executor {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Executor{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic executor from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{client: client, opts: opts}
}

// NewSlots allocates n slots; each bounds one concurrent API call.
func (e *Executor) NewSlots(n int) ([]core.Slot, error) {
	if n <= 0 {
		return nil, fmt.Errorf("anthropic: slot count must be positive, got %d", n)
	}

	slots := make([]core.Slot, n)
	for i := range slots {
		slots[i] = slot{id: uuid.NewString()}
	}

	return slots, nil
}

// Dispatch issues a message request on its own goroutine and reports the
// outcome through done.
func (e *Executor) Dispatch(ctx context.Context, _ core.Slot, payload any, done core.CompletionFunc) error {
	prompt, ok := payload.(string)
	if !ok {
		return fmt.Errorf("anthropic: payload must be a prompt string, got %T", payload)
	}
	if done == nil {
		return fmt.Errorf("anthropic: completion callback must not be nil")
	}

	params := anthropic.MessageNewParams{
		Model:       e.opts.Model,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	go func() {
		resp, err := e.client.Messages.New(ctx, params)
		if err != nil {
			done(nil, fmt.Errorf("anthropic api error: %w", err))
			return
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.AsText().Text)
			}
		}
		done(sb.String(), nil)
	}()

	return nil
}
