package generator

import (
	"context"
	"errors"
	"time"

	"tweet_curator/logger"
)

// MaxAttempts bounds the number of full completion requests per generation.
const MaxAttempts = 3

// Pipeline sends assembled prompts to the model and validates what comes back.
// Retries exist to absorb malformed JSON from the model; each retry is a full request.
type Pipeline struct {
	llm            LLMClient
	log            *logger.Logger
	attemptTimeout time.Duration
}

type Option func(*Pipeline)

// WithAttemptTimeout bounds each completion call. A timeout counts as a failed attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.attemptTimeout = d }
}

func NewPipeline(llm LLMClient, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{llm: llm, log: log.With("component", "pipeline")}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Generate assembles the prompt for req and runs it. The only error is an
// assembly error (see UnknownTagError); model problems end up in the Result.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Result, Prompt, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return Result{}, Prompt{}, err
	}
	return p.Run(ctx, prompt, SelectedTags(req.Tags)), prompt, nil
}

// Run makes up to MaxAttempts sequential completion calls and returns the first
// well-formed result, or the generic failure result once the budget is spent.
func (p *Pipeline) Run(ctx context.Context, prompt Prompt, tags []string) Result {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		raw, err := p.complete(ctx, prompt)
		if err != nil {
			p.log.Warn("completion failed", "attempt", attempt, "error", err)
			continue
		}
		topics, err := ParseTopics(raw)
		if err != nil {
			p.log.Warn("JSON validation failed", "attempt", attempt, "error", err)
			continue
		}
		res := successResult(prompt, tags, topics)
		res.Attempts = attempt
		p.log.Info("generation done", "attempt", attempt, "topics", len(res.Topics()))
		return res
	}

	p.log.Error("generation failed", "attempts", MaxAttempts)
	res := failureResult(prompt)
	res.Attempts = MaxAttempts
	return res
}

func (p *Pipeline) complete(ctx context.Context, prompt Prompt) (string, error) {
	if p.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.attemptTimeout)
		defer cancel()
	}
	return p.llm.Complete(ctx, prompt)
}
