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

func (s *Server) handlePriceTable(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.prices.ListPriceEntries(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Price table list failed", "error", err)
			InternalServerError("Não foi possível carregar a tabela de preços").Write(w)
			return
		}
		NewHTMXResponse().BodyJSON(entries).Write(w)
	case http.MethodPost:
		entry, resp := parsePriceEntryBody(r)
		if resp != nil {
			resp.Write(w)
			return
		}
		created, err := s.prices.CreatePriceEntry(r.Context(), entry)
		if err != nil {
			slog.ErrorContext(r.Context(), "Create price entry failed", "error", err)
			InternalServerError("Erro interno").Write(w)
			return
		}
		NewHTMXResponse().
			Status(http.StatusCreated).
			TriggerPriceTableChanged().
			BodyJSON(created).
			Write(w)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handlePriceEntryByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/pricetable/")
	if id == "" || strings.Contains(id, "/") {
		NotFoundError("Item não encontrado").Write(w)
		return
	}

	switch r.Method {
	case http.MethodPut:
		entry, resp := parsePriceEntryBody(r)
		if resp != nil {
			resp.Write(w)
			return
		}
		entry.ID = id
		if err := s.prices.UpdatePriceEntry(r.Context(), entry); err != nil {
			writePriceError(w, r, err, "Update price entry failed")
			return
		}
		NewHTMXResponse().TriggerPriceTableChanged().BodyJSON(entry).Write(w)
	case http.MethodDelete:
		if err := s.prices.DeletePriceEntry(r.Context(), id); err != nil {
			writePriceError(w, r, err, "Delete price entry failed")
			return
		}
		NewHTMXResponse().TriggerPriceTableChanged().Write(w)
	default:
		MethodNotAllowedError("PUT, DELETE").Write(w)
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.prices.GetSettings(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Settings load failed", "error", err)
			InternalServerError("Não foi possível carregar as configurações").Write(w)
			return
		}
		NewHTMXResponse().BodyJSON(settings).Write(w)
	case http.MethodPut, http.MethodPost:
		parser := NewRequestBodyParser(r)
		if err := parser.Parse(); err != nil || !parser.IsJSON() {
			BadRequestError("Configurações devem ser enviadas como JSON").Write(w)
			return
		}
		var settings core.CompanySettings
		if err := json.Unmarshal(parser.GetRaw(), &settings); err != nil {
			BadRequestError("JSON inválido").Write(w)
			return
		}
		if err := s.prices.PutSettings(r.Context(), settings); err != nil {
			slog.ErrorContext(r.Context(), "Settings save failed", "error", err)
			InternalServerError("Erro interno").Write(w)
			return
		}
		NewHTMXResponse().
			TriggerSuccessNotification("Configurações salvas").
			BodyJSON(settings).
			Write(w)
	default:
		MethodNotAllowedError("GET, PUT, POST").Write(w)
	}
}

// parsePriceEntryBody accepts a JSON entry or an HTMX form with a
// decimal unitPrice field.
func parsePriceEntryBody(r *http.Request) (core.PriceEntry, *HTMXResponseBuilder) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		return core.PriceEntry{}, BadRequestError("Formato de requisição inválido")
	}

	if parser.IsJSON() {
		var entry core.PriceEntry
		if err := json.Unmarshal(parser.GetRaw(), &entry); err != nil {
			return core.PriceEntry{}, BadRequestError("JSON inválido")
		}
		entry.Description = sanitizeInput(entry.Description)
		if entry.Description == "" {
			return core.PriceEntry{}, UnprocessableEntityError("Descrição é obrigatória")
		}
		return entry, nil
	}

	description := parser.Get("description")
	if description == "" {
		return core.PriceEntry{}, UnprocessableEntityError("Descrição é obrigatória")
	}
	cents, err := core.ParseDecimalToCents(parser.Get("unitPrice"))
	if err != nil {
		return core.PriceEntry{}, UnprocessableEntityError("Preço inválido")
	}
	return core.PriceEntry{
		Description: description,
		Category:    parser.Get("category"),
		UnitPrice:   core.Money{Cents: cents},
	}, nil
}

func writePriceError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("Item não encontrado").Write(w)
		return
	}
	slog.ErrorContext(r.Context(), logMsg, "error", err)
	InternalServerError("Erro interno").Write(w)
}
