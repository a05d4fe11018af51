package llm

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultCostNoticeThreshold is the cost in USD accumulated since the last
// report above which the broker emits a cost notice.
const DefaultCostNoticeThreshold = 0.09

// Price is the USD cost of 1K tokens.
type Price struct {
	Input  float64
	Output float64
}

// DefaultPrices maps model name prefixes to prices. The longest matching
// prefix wins.
var DefaultPrices = map[string]Price{
	"gpt-4-32k":         {Input: 0.06, Output: 0.12},
	"gpt-4":             {Input: 0.03, Output: 0.06},
	"gpt-3.5-turbo-16k": {Input: 0.003, Output: 0.004},
	"gpt-3.5-turbo":     {Input: 0.0015, Output: 0.002},
}

// CostLedger accumulates the token usage of a session and prices it.
type CostLedger struct {
	mu     sync.Mutex
	model  string
	prices map[string]Price
	usage  Usage
}

// NewCostLedger creates a ledger pricing calls to model with DefaultPrices.
func NewCostLedger(model string) *CostLedger {
	return &CostLedger{model: model, prices: DefaultPrices}
}

// PriceFor returns the price of model. Unknown models are free.
func (l *CostLedger) PriceFor(model string) Price {
	var (
		best  Price
		bestN int
	)
	for prefix, price := range l.prices {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestN {
			best, bestN = price, len(prefix)
		}
	}
	return best
}

// TokenCost prices a usage at the ledger's model.
func (l *CostLedger) TokenCost(prompt, completion int) float64 {
	price := l.PriceFor(l.model)
	return float64(prompt)*price.Input/1000 + float64(completion)*price.Output/1000
}

// Add records one call and returns its cost.
func (l *CostLedger) Add(u Usage) float64 {
	if u.Total == 0 {
		u.Total = u.Prompt + u.Completion
	}

	l.mu.Lock()
	l.usage.Prompt += u.Prompt
	l.usage.Completion += u.Completion
	l.usage.Total += u.Total
	l.mu.Unlock()

	return l.TokenCost(u.Prompt, u.Completion)
}

// Usage returns the accumulated token counts.
func (l *CostLedger) Usage() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usage
}

// Cost returns the accumulated cost in USD.
func (l *CostLedger) Cost() float64 {
	u := l.Usage()
	return l.TokenCost(u.Prompt, u.Completion)
}

// CurrentCost formats the session total.
func (l *CostLedger) CurrentCost() string {
	return fmt.Sprintf("Current cost: %.2f USD (%d tokens)", l.Cost(), l.Usage().Total)
}

// CostNotice formats the cost accumulated since the last report.
func CostNotice(cost float64, tokens int) string {
	return fmt.Sprintf("Cost: +%.2f USD (+%d tokens)", cost, tokens)
}
