package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gestor/internal/core"
)

// handleExportLedger streams the full ledger as a tab-separated report,
// ready to paste into a spreadsheet.
func (s *Server) handleExportLedger(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	txs, err := s.ledger.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger export failed", "error", err)
		InternalServerError("Não foi possível exportar o relatório").Write(w)
		return
	}

	filename := fmt.Sprintf("financeiro-%s.tsv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write([]byte(core.LedgerReport(txs)))
}

// handleBackupExport serves a full JSON backup of orders and transactions.
func (s *Server) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	data, err := s.backup.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Backup export failed", "error", err)
		InternalServerError("Não foi possível gerar o backup").Write(w)
		return
	}

	filename := fmt.Sprintf("backup-gestor-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

// handleBackupRestore replaces the whole data set with the uploaded
// backup document.
func (s *Server) handleBackupRestore(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	if err := s.backup.Restore(r.Context(), parser.GetRaw()); err != nil {
		slog.ErrorContext(r.Context(), "Backup restore failed", "error", err)
		UnprocessableEntityError("Arquivo de backup inválido").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerOrderChanged().
		TriggerSuccessNotification("Backup restaurado").
		Write(w)
}
