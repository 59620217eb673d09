package core

import (
	"encoding/json"
	"testing"
)

func TestBackupStripsIDs(t *testing.T) {
	orders := []Order{{ID: "o-1", ClientName: "Maria", OrderDate: NewDate(2025, 1, 10)}}
	txs := []Transaction{{ID: "t-1", Date: NewDate(2025, 1, 11), Description: "sinal", Amount: Money{Cents: 100}, Type: Income}}

	b := NewBackup(orders, txs)
	if b.Orders[0].ID != "" || b.Transactions[0].ID != "" {
		t.Error("backup must strip storage-assigned ids")
	}
	// Originals keep their ids.
	if orders[0].ID != "o-1" || txs[0].ID != "t-1" {
		t.Error("NewBackup mutated its inputs")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	b := NewBackup(
		[]Order{{
			ClientName:  "Time do Bairro",
			OrderDate:   NewDate(2025, 2, 1),
			DownPayment: Money{Cents: 10000},
			Parts: []Part{{
				InputType: InputStandard,
				Sizes:     map[string]map[string]int{"Normal": {"M": 11}},
				UnitPrice: Money{Cents: 4000},
			}},
		}},
		[]Transaction{{
			Date:        NewDate(2025, 2, 2),
			Description: "sinal pedido",
			Amount:      Money{Cents: 10000},
			Type:        Income,
			Status:      StatusPaid,
		}},
	)

	data, err := b.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err := ParseBackup(data)
	if err != nil {
		t.Fatalf("ParseBackup() error: %v", err)
	}
	if len(got.Orders) != 1 || len(got.Transactions) != 1 {
		t.Fatalf("round trip lost records: %+v", got)
	}
	if got.Orders[0].Parts[0].Sizes["Normal"]["M"] != 11 {
		t.Error("nested part sizes lost in round trip")
	}
	if got.Transactions[0].Amount.Cents != 10000 {
		t.Errorf("amount = %d, want 10000", got.Transactions[0].Amount.Cents)
	}
}

func TestParseBackup_Rejections(t *testing.T) {
	if _, err := ParseBackup([]byte("{not json")); err == nil {
		t.Error("malformed JSON must fail")
	}
	if _, err := ParseBackup([]byte(`{"orders":[],"transactions":[]}`)); err != ErrEmptyBackup {
		t.Errorf("empty document: got %v, want ErrEmptyBackup", err)
	}
}

func TestPartJSONKeysMatchLegacyFormat(t *testing.T) {
	price := Money{Cents: 2000}
	p := Part{
		InputType:         InputStandard,
		Sizes:             map[string]map[string]int{"Infantil": {"6": 2}},
		UnitPrice:         Money{Cents: 1500},
		UnitPriceStandard: &price,
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"partInputType", "sizes", "unitPrice", "unitPriceStandard"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestMoneyUnmarshalLenient(t *testing.T) {
	var m Money
	if err := m.UnmarshalJSON([]byte(`"abc"`)); err != nil || m.Cents != 0 {
		t.Errorf("malformed amount should decode to zero, got %d err %v", m.Cents, err)
	}
}
