package assistant

import (
	"context"
	"log"

	"github.com/juliejulie/juliejulie/internal/observability"
)

// Rule is one recognized intent. Match sees the normalized command; the
// first matching rule in registration order handles it, nothing else runs.
type Rule struct {
	Name     string
	Examples []string
	Match    func(command string) bool
	Handle   func(ctx context.Context, command string) Response
}

// Registry dispatches commands across an ordered rule list.
type Registry struct {
	rules   []Rule
	metrics *observability.Metrics
}

func NewRegistry(metrics *observability.Metrics) *Registry {
	return &Registry{metrics: metrics}
}

// Register appends rules; order of registration is match priority.
func (r *Registry) Register(rules ...Rule) {
	r.rules = append(r.rules, rules...)
}

// Rules returns the registered rules in priority order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Dispatch runs the first matching rule. A panicking handler is contained
// here: the user gets an apology, the process keeps serving.
func (r *Registry) Dispatch(ctx context.Context, command string) (resp Response, intent string, matched bool) {
	for _, rule := range r.rules {
		if !rule.Match(command) {
			continue
		}
		return r.invoke(ctx, rule, command), rule.Name, true
	}
	return Response{}, "", false
}

func (r *Registry) invoke(ctx context.Context, rule Rule, command string) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("assistant: handler %s panicked: %v", rule.Name, rec)
			if r.metrics != nil {
				r.metrics.HandlerFaults.Inc()
			}
			resp = spoken("Sorry, something went wrong handling that command.")
		}
	}()
	resp = rule.Handle(ctx, command)
	if resp.IsNoop() {
		// A rule matched but produced nothing perceivable. That is a
		// handler bug, not a reason to leave the user hanging.
		log.Printf("assistant: handler %s returned empty response for %q", rule.Name, command)
		if r.metrics != nil {
			r.metrics.HandlerFaults.Inc()
		}
		resp = spoken("Sorry, I couldn't come up with anything for that.")
	}
	return resp
}
