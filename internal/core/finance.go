package core

import (
	"sort"
	"strings"
)

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Summary is the dashboard aggregate over one period-filtered snapshot.
// Receivables count toward gross revenue but not toward net profit or the
// bank balance; only realized income moves money.
type Summary struct {
	GrossRevenue  Money `json:"grossRevenue"`
	Received      Money `json:"received"`
	Receivables   Money `json:"receivables"`
	TotalExpenses Money `json:"totalExpenses"`
	NetProfit     Money `json:"netProfit"`
	BankBalance   Money `json:"bankBalance"`

	TopExpenseCategories []CategoryAmount `json:"topExpenseCategories"`
	TopIncomeCategories  []CategoryAmount `json:"topIncomeCategories"`
}

// topN is the category breakdown cutoff.
const topN = 5

// FilterByPeriod returns the transactions whose date falls inside rng.
func FilterByPeriod(txs []Transaction, rng DateRange) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if rng.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByDescription narrows a displayed list with a case-insensitive
// substring match. It is a display refinement only: aggregates are always
// computed from the period-filtered set before the search term applies.
func FilterByDescription(txs []Transaction, term string) []Transaction {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.Description), term) {
			out = append(out, t)
		}
	}
	return out
}

// categoryTally accumulates per-category sums while remembering first
// encounter order so that ties break stably.
type categoryTally struct {
	sums  map[string]int64
	order []string
}

func newCategoryTally() *categoryTally {
	return &categoryTally{sums: make(map[string]int64)}
}

func (c *categoryTally) add(name string, cents int64) {
	if _, seen := c.sums[name]; !seen {
		c.order = append(c.order, name)
	}
	c.sums[name] += cents
}

func (c *categoryTally) top(n int) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: c.sums[name]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Summarize aggregates the snapshot restricted to rng. Callers pass the
// whole current snapshot on every invocation; there is no shared
// accumulator between calls.
func Summarize(txs []Transaction, rng DateRange, initialBalance Money) Summary {
	var s Summary
	var bankFlow int64
	expenseCats := newCategoryTally()
	incomeCats := newCategoryTally()

	for _, t := range FilterByPeriod(txs, rng) {
		amount := t.Amount.Cents
		if amount < 0 {
			// Defensive: malformed records contribute nothing.
			amount = 0
		}
		switch t.Type {
		case Income:
			s.GrossRevenue.Cents += amount
			if t.Status == StatusReceivable {
				s.Receivables.Cents += amount
			} else {
				s.Received.Cents += amount
				if t.EffectiveSource() == SourceBank {
					bankFlow += amount
				}
			}
			incomeCats.add(t.EffectiveCategory(), amount)
		case Expense:
			s.TotalExpenses.Cents += amount
			if t.EffectiveSource() == SourceBank {
				bankFlow -= amount
			}
			expenseCats.add(t.EffectiveCategory(), amount)
		}
	}

	s.NetProfit = s.Received.Sub(s.TotalExpenses)
	s.BankBalance = Money{Cents: initialBalance.Cents + bankFlow}
	s.TopExpenseCategories = expenseCats.top(topN)
	s.TopIncomeCategories = incomeCats.top(topN)
	return s
}
