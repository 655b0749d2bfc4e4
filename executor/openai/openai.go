// Package openai provides an executor backed by the OpenAI Chat Completions
// API. Each pool slot corresponds to one in-flight completion request; the
// dispatched payload must be a prompt string and the produced outputs are the
// assistant message text.
package openai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/inferpipe/core"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI executor.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

type slot struct {
	id string
}

// ID returns the slot identifier.
func (s slot) ID() string { return s.id }

// Executor adapts the OpenAI Chat Completions API to the core.Executor
// interface.
type Executor struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI executor using the official client.
func New(optFns ...func(o *Options)) *Executor {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI executor from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{client: client, opts: opts}
}

// NewSlots allocates n slots; each bounds one concurrent API call.
func (e *Executor) NewSlots(n int) ([]core.Slot, error) {
	if n <= 0 {
		return nil, fmt.Errorf("openai: slot count must be positive, got %d", n)
	}

	slots := make([]core.Slot, n)
	for i := range slots {
		slots[i] = slot{id: uuid.NewString()}
	}

	return slots, nil
}

// Dispatch issues a completion request on its own goroutine and reports the
// outcome through done.
func (e *Executor) Dispatch(ctx context.Context, _ core.Slot, payload any, done core.CompletionFunc) error {
	prompt, ok := payload.(string)
	if !ok {
		return fmt.Errorf("openai: payload must be a prompt string, got %T", payload)
	}
	if done == nil {
		return fmt.Errorf("openai: completion callback must not be nil")
	}

	params := openai.ChatCompletionNewParams{
		Model:               e.opts.Model,
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}

	go func() {
		resp, err := e.client.Chat.Completions.New(ctx, params)
		if err != nil {
			done(nil, fmt.Errorf("openai api error: %w", err))
			return
		}
		if len(resp.Choices) == 0 {
			done(nil, fmt.Errorf("no choices returned"))
			return
		}
		done(resp.Choices[0].Message.Content, nil)
	}()

	return nil
}
