package llm

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrBudgetExceeded stops further advisory calls once the configured
// token or cost ceiling is hit.
var ErrBudgetExceeded = errors.New("llm budget exceeded")

// Redactor scrubs secrets from text before it leaves the process.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor builds a redactor with the default secret patterns:
// OpenAI keys, GitHub tokens, AWS access keys, and bearer headers.
func NewRedactor() *Redactor {
	return &Redactor{patterns: []*regexp.Regexp{
		regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`),
		regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{16,}`),
		regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
		regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/-]{8,}=*`),
		regexp.MustCompile(`(?i)(password|secret|token)\s*[:=]\s*\S+`),
	}}
}

// Redact replaces every recognized secret with a placeholder.
func (r *Redactor) Redact(text string) string {
	for _, p := range r.patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

// BudgetTracker accumulates token and dollar spend across one run and
// refuses work past the configured ceilings. A zero ceiling means
// unlimited.
type BudgetTracker struct {
	maxTokens  int
	maxCostUSD float64

	usedTokens  int
	usedCostUSD float64
	calls       int
}

// NewBudgetTracker builds a tracker from the run options.
func NewBudgetTracker(opts Options) *BudgetTracker {
	return &BudgetTracker{maxTokens: opts.MaxTokens, maxCostUSD: opts.MaxCostUSD}
}

// Charge records one call's usage and reports whether the budget still
// holds afterwards.
func (b *BudgetTracker) Charge(usage Usage, costUSD float64) error {
	b.calls++
	b.usedTokens += usage.TotalTokens
	b.usedCostUSD += costUSD
	if b.maxTokens > 0 && b.usedTokens > b.maxTokens {
		return fmt.Errorf("%w: %d tokens used, limit %d", ErrBudgetExceeded, b.usedTokens, b.maxTokens)
	}
	if b.maxCostUSD > 0 && b.usedCostUSD > b.maxCostUSD {
		return fmt.Errorf("%w: $%.4f spent, limit $%.4f", ErrBudgetExceeded, b.usedCostUSD, b.maxCostUSD)
	}
	return nil
}

// Exceeded reports whether a ceiling has been crossed. Unlike Charge it
// records nothing, so probing the budget never skews the call count.
func (b *BudgetTracker) Exceeded() bool {
	if b.maxTokens > 0 && b.usedTokens > b.maxTokens {
		return true
	}
	return b.maxCostUSD > 0 && b.usedCostUSD > b.maxCostUSD
}

// Spent summarizes the accumulated usage.
func (b *BudgetTracker) Spent() (calls, tokens int, costUSD float64) {
	return b.calls, b.usedTokens, b.usedCostUSD
}

// estimateCostUSD is a coarse per-token price used when the provider
// does not report spend. It only needs to be the right order of
// magnitude for budget enforcement.
func estimateCostUSD(usage Usage) float64 {
	return float64(usage.TotalTokens) * 0.000002
}
