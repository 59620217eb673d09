package core

import (
	"testing"
	"time"
)

func tx(day int, typ TransactionType, cents int64, opts ...func(*Transaction)) Transaction {
	t := Transaction{
		Date:        NewDate(2025, 6, day),
		Description: "lancamento",
		Amount:      Money{Cents: cents},
		Type:        typ,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func withStatus(s Status) func(*Transaction)   { return func(t *Transaction) { t.Status = s } }
func withSource(s Source) func(*Transaction)   { return func(t *Transaction) { t.Source = s } }
func withCategory(c string) func(*Transaction) { return func(t *Transaction) { t.Category = c } }
func withDesc(d string) func(*Transaction)     { return func(t *Transaction) { t.Description = d } }

func TestSummarize_NetProfitExcludesReceivables(t *testing.T) {
	txs := []Transaction{
		tx(5, Income, 10000, withStatus(StatusReceivable)),
		tx(6, Expense, 3000),
	}
	s := Summarize(txs, DateRange{}, Money{})

	if s.GrossRevenue.Cents != 10000 {
		t.Errorf("GrossRevenue = %d, want 10000", s.GrossRevenue.Cents)
	}
	if s.Received.Cents != 0 {
		t.Errorf("Received = %d, want 0", s.Received.Cents)
	}
	if s.Receivables.Cents != 10000 {
		t.Errorf("Receivables = %d, want 10000", s.Receivables.Cents)
	}
	if s.NetProfit.Cents != -3000 {
		t.Errorf("NetProfit = %d, want -3000", s.NetProfit.Cents)
	}
}

func TestSummarize_BankBalanceIsolation(t *testing.T) {
	txs := []Transaction{
		tx(1, Income, 20000, withSource(SourceCash)),
		tx(2, Expense, 5000, withSource(SourceBank)),
	}
	s := Summarize(txs, DateRange{}, Money{Cents: 50000})

	if s.BankBalance.Cents != 45000 {
		t.Errorf("BankBalance = %d, want 45000 (caixa income must not move it)", s.BankBalance.Cents)
	}
}

func TestSummarize_BankFlowSkipsReceivables(t *testing.T) {
	txs := []Transaction{
		tx(1, Income, 8000, withStatus(StatusReceivable)), // source unset -> banco
		tx(2, Income, 2000),
	}
	s := Summarize(txs, DateRange{}, Money{})
	if s.BankBalance.Cents != 2000 {
		t.Errorf("BankBalance = %d, want 2000 (receivable income never enters bank flow)", s.BankBalance.Cents)
	}
}

func TestSummarize_TopFiveTruncation(t *testing.T) {
	cats := []string{"Tecido", "Tinta", "Linha", "Energia", "Aluguel", "Frete", "Embalagem"}
	var txs []Transaction
	for i, c := range cats {
		txs = append(txs, tx(i+1, Expense, int64((i+1)*1000), withCategory(c)))
	}
	s := Summarize(txs, DateRange{}, Money{})

	if len(s.TopExpenseCategories) != topN {
		t.Fatalf("got %d categories, want %d", len(s.TopExpenseCategories), topN)
	}
	for i := 1; i < len(s.TopExpenseCategories); i++ {
		if s.TopExpenseCategories[i].Amount.Cents > s.TopExpenseCategories[i-1].Amount.Cents {
			t.Errorf("categories not sorted descending at index %d", i)
		}
	}
	if s.TopExpenseCategories[0].Name != "Embalagem" {
		t.Errorf("top category = %q, want Embalagem", s.TopExpenseCategories[0].Name)
	}
	// Truncation drops breakdown entries only; scalar totals keep everything.
	if s.TotalExpenses.Cents != 28000 {
		t.Errorf("TotalExpenses = %d, want 28000", s.TotalExpenses.Cents)
	}
}

func TestSummarize_TieBreakIsStable(t *testing.T) {
	txs := []Transaction{
		tx(1, Expense, 1000, withCategory("Primeira")),
		tx(2, Expense, 1000, withCategory("Segunda")),
	}
	s := Summarize(txs, DateRange{}, Money{})
	if s.TopExpenseCategories[0].Name != "Primeira" {
		t.Errorf("tie broken out of encounter order: got %q first", s.TopExpenseCategories[0].Name)
	}
}

func TestSummarize_UncategorizedDefault(t *testing.T) {
	txs := []Transaction{tx(1, Expense, 1200, withCategory("  "))}
	s := Summarize(txs, DateRange{}, Money{})
	if len(s.TopExpenseCategories) != 1 || s.TopExpenseCategories[0].Name != Uncategorized {
		t.Errorf("blank category not folded into %q: %+v", Uncategorized, s.TopExpenseCategories)
	}
}

func TestSummarize_PeriodIdempotence(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	txs := []Transaction{
		tx(1, Income, 7000),
		tx(30, Expense, 2500),
		{Date: NewDate(2025, 5, 31), Description: "fora", Amount: Money{Cents: 9999}, Type: Expense},
	}

	byselector := Summarize(txs, PeriodThisMonth.Resolve(now, Date{}, Date{}), Money{Cents: 100})
	explicit := PeriodCustom.Resolve(now, NewDate(2025, 6, 1), NewDate(2025, 6, 30))
	byCustom := Summarize(txs, explicit, Money{Cents: 100})

	if bySelectorDiff(byselector, byCustom) {
		t.Errorf("aggregates differ:\nselector: %+v\ncustom:   %+v", byselector, byCustom)
	}
}

func bySelectorDiff(a, b Summary) bool {
	return a.GrossRevenue != b.GrossRevenue ||
		a.Received != b.Received ||
		a.Receivables != b.Receivables ||
		a.TotalExpenses != b.TotalExpenses ||
		a.NetProfit != b.NetProfit ||
		a.BankBalance != b.BankBalance
}

func TestFilterByDescription_DoesNotAffectAggregates(t *testing.T) {
	txs := []Transaction{
		tx(1, Income, 5000, withDesc("Camisetas time de futebol")),
		tx(2, Expense, 1000, withDesc("Tinta para serigrafia")),
	}
	rng := DateRange{}

	before := Summarize(txs, rng, Money{})
	displayed := FilterByDescription(FilterByPeriod(txs, rng), "camisetas")
	after := Summarize(txs, rng, Money{})

	if len(displayed) != 1 {
		t.Fatalf("displayed = %d entries, want 1", len(displayed))
	}
	if bySelectorDiff(before, after) {
		t.Errorf("search changed aggregates: %+v vs %+v", before, after)
	}
	if before.GrossRevenue.Cents != 5000 || before.TotalExpenses.Cents != 1000 {
		t.Errorf("aggregates computed from narrowed set: %+v", before)
	}
}

func TestFilterByDescription_CaseInsensitive(t *testing.T) {
	txs := []Transaction{tx(1, Income, 100, withDesc("Pagamento LOJA Centro"))}
	if got := FilterByDescription(txs, "loja"); len(got) != 1 {
		t.Errorf("case-insensitive match failed, got %d entries", len(got))
	}
}

func TestSummarize_MalformedAmountContributesZero(t *testing.T) {
	txs := []Transaction{
		tx(1, Income, -500), // should never happen, must not corrupt totals
		tx(2, Income, 1000),
	}
	s := Summarize(txs, DateRange{}, Money{})
	if s.GrossRevenue.Cents != 1000 {
		t.Errorf("GrossRevenue = %d, want 1000", s.GrossRevenue.Cents)
	}
}
