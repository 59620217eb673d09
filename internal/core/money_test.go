package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0,5", 50, false},
		{"100", 10000, false},
		{"", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmountOrZero(t *testing.T) {
	if got := AmountOrZero("15,90"); got.Cents != 1590 {
		t.Errorf("AmountOrZero(15,90) = %d, want 1590", got.Cents)
	}
	if got := AmountOrZero("nonsense"); got.Cents != 0 {
		t.Errorf("AmountOrZero(nonsense) = %d, want 0", got.Cents)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:        NewDate(2025, 1, 1),
		Description: "venda",
		Amount:      Money{Cents: 100},
		Type:        Income,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if err := tx.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEffectiveDefaults(t *testing.T) {
	tx := Transaction{Type: Income}
	if tx.EffectiveSource() != SourceBank {
		t.Error("unset source must default to banco")
	}
	if tx.EffectiveCategory() != Uncategorized {
		t.Error("unset category must default to Uncategorized")
	}
	if !tx.Realized() {
		t.Error("income without receivable status is realized")
	}
	tx.Status = StatusReceivable
	if tx.Realized() {
		t.Error("receivable income is not realized")
	}
}
