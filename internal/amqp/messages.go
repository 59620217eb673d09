package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the sync queue. The worker fetches the full
// transaction from storage, so messages stay id-and-version only.
const (
	KindLedgerSync   = "ledger.sync"
	KindLedgerDelete = "ledger.delete"
)

// Envelope wraps every queue message with its kind so one queue can carry
// both syncs and deletes.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// LedgerSyncMessage asks the worker to mirror one ledger row to the
// spreadsheet. Version lets the worker skip superseded updates.
type LedgerSyncMessage struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// LedgerDeleteMessage asks the worker to remove a mirrored row.
type LedgerDeleteMessage struct {
	ID string `json:"id"`
}

func wrap(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{Kind: kind, Timestamp: time.Now(), Payload: raw})
}

// DecodeEnvelope parses a queue delivery into its envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Kind == "" {
		return Envelope{}, fmt.Errorf("envelope missing kind")
	}
	return env, nil
}
