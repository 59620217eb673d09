package core

import "strings"

// Localized labels used by the spreadsheet report and the sheet sync.
var (
	typeLabels = map[TransactionType]string{
		Income:  "Receita",
		Expense: "Despesa",
	}
	sourceLabels = map[Source]string{
		SourceBank: "Banco",
		SourceCash: "Caixa",
	}
)

// TypeLabel returns the localized transaction type label.
func TypeLabel(t TransactionType) string {
	return typeLabels[t]
}

// StatusLabel returns the localized status label. Expenses are always
// settled, so anything not flagged receivable reads as paid.
func StatusLabel(t Transaction) string {
	if t.Type == Income && t.Status == StatusReceivable {
		return "A Receber"
	}
	return "Pago"
}

// SourceLabel returns the localized source-account label.
func SourceLabel(s Source) string {
	return sourceLabels[s]
}

// ReportRow renders one transaction as the report's column values:
// date, description, category, signed value, type, status, source.
// Expenses are negative; values use a decimal comma.
func ReportRow(t Transaction) []string {
	value := t.Amount.Cents
	if t.Type == Expense {
		value = -value
	}
	return []string{
		t.Date.Format("02/01/2006"),
		t.Description,
		t.EffectiveCategory(),
		FormatDecimalComma(value),
		TypeLabel(t.Type),
		StatusLabel(t),
		SourceLabel(t.EffectiveSource()),
	}
}

// LedgerReport renders the full transaction list as a tab-separated
// report meant for pasting into spreadsheet software. It always covers
// every transaction passed in, even when the dashboard is showing a
// period-filtered subset, so exported totals can differ from the
// displayed ones.
func LedgerReport(txs []Transaction) string {
	var b strings.Builder
	b.WriteString("Data\tDescrição\tCategoria\tValor\tTipo\tStatus\tOrigem\n")
	for _, t := range txs {
		b.WriteString(strings.Join(ReportRow(t), "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
