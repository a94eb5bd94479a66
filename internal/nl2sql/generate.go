// Package nl2sql turns a rendered schema context plus a natural-language
// question into a SQL statement through an external LLM service. Any failure
// of that call degrades the outcome instead of erroring: the schema artifact
// is already durable by the time generation runs, so a run without network
// still completes.
package nl2sql

import "context"

// Request is the fully rendered generation payload. It is built
// deterministically by internal/prompt; the client adds nothing to it.
type Request struct {
	System string `json:"system"`
	User   string `json:"user"`
}

type Answer struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Outcome is the tagged result of a generation attempt: either a parsed
// answer or a degraded marker with the reason. Exactly one branch is set.
type Outcome struct {
	Answer   *Answer `json:"answer,omitempty"`
	Degraded bool    `json:"degraded"`
	Reason   string  `json:"reason,omitempty"`
}

func Succeeded(answer Answer) Outcome {
	return Outcome{Answer: &answer}
}

func DegradedOutcome(reason string) Outcome {
	return Outcome{Degraded: true, Reason: reason}
}

type Generator interface {
	Generate(ctx context.Context, req Request) Outcome
}
