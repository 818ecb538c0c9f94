// Package mock provides a test double for the llm.Provider interface.
//
// Responses are served in order from Responses (and Errs); once exhausted,
// CompleteResponse and CompleteErr are returned for every further call.
//
//	p := &mock.Provider{
//	    CompleteResponse: &llm.CompletionResponse{Content: "0 Order."},
//	}
package mock

import (
	"context"
	"sync"

	"github.com/JanSetu/JanSetu/pkg/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	Ctx context.Context
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	mu sync.Mutex

	// Responses and Errs are consumed one per call, by call index.
	Responses []*llm.CompletionResponse
	Errs      []error

	// CompleteResponse and CompleteErr are returned once the scripted
	// sequences are exhausted.
	CompleteResponse *llm.CompletionResponse
	CompleteErr      error

	// CompleteFunc, if set, takes precedence over every other field.
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall
}

// Complete records the call and returns the scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	i := len(p.CompleteCalls)
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	fn := p.CompleteFunc

	resp, err := p.CompleteResponse, p.CompleteErr
	if i < len(p.Responses) || i < len(p.Errs) {
		resp, err = nil, nil
		if i < len(p.Responses) {
			resp = p.Responses[i]
		}
		if i < len(p.Errs) {
			err = p.Errs[i]
		}
	}
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return resp, err
}

// Calls returns a copy of the recorded calls.
func (p *Provider) Calls() []CompleteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CompleteCall, len(p.CompleteCalls))
	copy(out, p.CompleteCalls)
	return out
}
