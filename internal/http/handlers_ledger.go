package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gestor/internal/core"
	"gestor/internal/storage"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err)
		InternalServerError("Não foi possível carregar os lançamentos").Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(txs).Write(w)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	tx, resp := parseTransactionBody(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeLedgerError(w, r, err, "Create transaction failed")
		return
	}

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerLedgerChanged().
		TriggerFormReset().
		TriggerSuccessNotification("Lançamento registrado").
		BodyJSON(created).
		Write(w)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/transactions/")
	if rest == "" {
		NotFoundError("Lançamento não encontrado").Write(w)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/pay"); ok {
		s.markTransactionPaid(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, rest)
	case http.MethodPut:
		s.updateTransaction(w, r, rest)
	case http.MethodDelete:
		s.deleteTransaction(w, r, rest)
	default:
		MethodNotAllowedError("GET, PUT, DELETE").Write(w)
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		writeLedgerError(w, r, err, "Get transaction failed")
		return
	}
	NewHTMXResponse().BodyJSON(tx).Write(w)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, resp := parseTransactionBody(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	tx.ID = id

	if err := s.ledger.UpdateTransaction(r.Context(), tx); err != nil {
		writeLedgerError(w, r, err, "Update transaction failed")
		return
	}

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerSuccessNotification("Lançamento atualizado").
		BodyJSON(tx).
		Write(w)
}

func (s *Server) markTransactionPaid(w http.ResponseWriter, r *http.Request, id string) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.ledger.MarkPaid(r.Context(), id); err != nil {
		writeLedgerError(w, r, err, "Mark paid failed")
		return
	}

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerSuccessNotification("Recebimento confirmado").
		Write(w)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeLedgerError(w, r, err, "Delete transaction failed")
		return
	}

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerSuccessNotification("Lançamento removido").
		Write(w)
}

// parseTransactionBody accepts either a JSON document or an HTMX form
// post. Form amounts use decimal notation; JSON amounts are plain cents.
func parseTransactionBody(r *http.Request) (core.Transaction, *HTMXResponseBuilder) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		return core.Transaction{}, BadRequestError("Formato de requisição inválido")
	}

	if parser.IsJSON() {
		var tx core.Transaction
		if err := json.Unmarshal(parser.GetRaw(), &tx); err != nil {
			return core.Transaction{}, BadRequestError("JSON inválido")
		}
		tx.Description = sanitizeInput(tx.Description)
		return tx, nil
	}

	cents, err := core.ParseDecimalToCents(parser.Get("amount"))
	if err != nil {
		return core.Transaction{}, UnprocessableEntityError("Valor inválido")
	}

	date, err := parseDate(parser.Get("date"))
	if err != nil {
		return core.Transaction{}, UnprocessableEntityError("Data inválida")
	}

	return core.Transaction{
		Date:        date,
		Description: parser.Get("description"),
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(parser.Get("type")),
		Category:    parser.Get("category"),
		Source:      core.Source(parser.Get("source")),
		Status:      core.Status(parser.Get("status")),
	}, nil
}

func writeLedgerError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError("Lançamento não encontrado").Write(w)
	case errors.Is(err, core.ErrNotReceivable):
		UnprocessableEntityError("Lançamento não é um recebível").Write(w)
	case errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate):
		UnprocessableEntityError("Dados do lançamento inválidos").Write(w)
	default:
		slog.ErrorContext(r.Context(), logMsg, "error", err)
		InternalServerError("Erro interno").Write(w)
	}
}
