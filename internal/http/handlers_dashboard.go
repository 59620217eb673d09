package http

import (
	"log/slog"
	"net/http"
	"time"

	"gestor/internal/core"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página não encontrada").Write(w)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	settings, err := s.prices.GetSettings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
	}

	data := struct {
		Today    string
		Settings core.CompanySettings
	}{
		Today:    time.Now().Format("2006-01-02"),
		Settings: settings,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed",
			"error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// summarize computes the dashboard summary for the given filter, serving
// from the LRU cache when possible.
func (s *Server) summarize(r *http.Request, params PeriodParams) (core.Summary, error) {
	key := params.CacheKey()
	if cached, ok := s.summaryCache.Get(key); ok {
		return cached, nil
	}

	txs, err := s.ledger.List(r.Context())
	if err != nil {
		return core.Summary{}, err
	}

	rng := params.Resolve(time.Now())
	summary := core.Summarize(core.FilterByPeriod(txs, rng), rng, s.initialBalance)
	s.summaryCache.Set(key, summary)
	return summary, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params := ParsePeriodParams(r.URL.Query())
	summary, err := s.summarize(r, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary computation failed", "error", err)
		InternalServerError("Não foi possível calcular o resumo").Write(w)
		return
	}

	s.renderPartial(w, r, "summary.html", summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params := ParsePeriodParams(r.URL.Query())
	summary, err := s.summarize(r, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category breakdown failed", "error", err)
		InternalServerError("Não foi possível calcular as categorias").Write(w)
		return
	}

	data := struct {
		Expenses []core.CategoryAmount
		Income   []core.CategoryAmount
	}{
		Expenses: summary.TopExpenseCategories,
		Income:   summary.TopIncomeCategories,
	}
	s.renderPartial(w, r, "categories.html", data)
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params := ParsePeriodParams(r.URL.Query())
	txs, err := s.ledger.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err)
		InternalServerError("Não foi possível carregar os lançamentos").Write(w)
		return
	}

	filtered := core.FilterByPeriod(txs, params.Resolve(time.Now()))
	if params.Search != "" {
		filtered = core.FilterByDescription(filtered, params.Search)
	}

	data := struct {
		Transactions []core.Transaction
		Search       string
	}{
		Transactions: filtered,
		Search:       params.Search,
	}
	s.renderPartial(w, r, "transactions.html", data)
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Partial template execution failed",
			"error", err, "template", name)
	}
}
