package core

import (
	"encoding/json"
	"errors"
)

// Backup is the portable serialization of the data model: orders and
// transactions with storage-assigned ids stripped.
type Backup struct {
	Orders       []Order       `json:"orders"`
	Transactions []Transaction `json:"transactions"`
}

var ErrEmptyBackup = errors.New("backup contains no data")

// NewBackup builds a backup document from the current snapshots. IDs are
// cleared so a restore never collides with the target store's ids.
func NewBackup(orders []Order, txs []Transaction) Backup {
	b := Backup{
		Orders:       make([]Order, len(orders)),
		Transactions: make([]Transaction, len(txs)),
	}
	for i, o := range orders {
		o.ID = ""
		b.Orders[i] = o
	}
	for i, t := range txs {
		t.ID = ""
		b.Transactions[i] = t
	}
	return b
}

// Marshal renders the backup as indented JSON.
func (b Backup) Marshal() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// ParseBackup decodes a backup document. A document that parses but holds
// neither orders nor transactions is rejected so an empty file cannot
// silently wipe the store on restore.
func ParseBackup(data []byte) (Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, err
	}
	if len(b.Orders) == 0 && len(b.Transactions) == 0 {
		return Backup{}, ErrEmptyBackup
	}
	return b, nil
}
