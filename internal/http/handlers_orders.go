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

// orderView is the API shape of an order: the stored fields plus the
// computed pricing breakdown. Totals are never persisted.
type orderView struct {
	core.Order
	Totals core.OrderTotals `json:"totals"`
}

func viewOrder(o core.Order) orderView {
	return orderView{Order: o, Totals: o.Totals()}
}

func viewOrders(orders []core.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, viewOrder(o))
	}
	return views
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listOrders(w, r)
	case http.MethodPost:
		s.createOrder(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Order list failed", "error", err)
		InternalServerError("Não foi possível carregar os pedidos").Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(viewOrders(orders)).Write(w)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	order, resp := parseOrderBody(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	created, err := s.orders.CreateOrder(r.Context(), order)
	if err != nil {
		writeOrderError(w, r, err, "Create order failed")
		return
	}

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerOrderChanged().
		TriggerFormReset().
		TriggerSuccessNotification("Pedido registrado").
		BodyJSON(viewOrder(created)).
		Write(w)
}

func (s *Server) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" || strings.Contains(id, "/") {
		NotFoundError("Pedido não encontrado").Write(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getOrder(w, r, id)
	case http.MethodPut:
		s.updateOrder(w, r, id)
	case http.MethodDelete:
		s.deleteOrder(w, r, id)
	default:
		MethodNotAllowedError("GET, PUT, DELETE").Write(w)
	}
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	order, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeOrderError(w, r, err, "Get order failed")
		return
	}
	NewHTMXResponse().BodyJSON(viewOrder(order)).Write(w)
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request, id string) {
	order, resp := parseOrderBody(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	order.ID = id

	if err := s.orders.UpdateOrder(r.Context(), order); err != nil {
		writeOrderError(w, r, err, "Update order failed")
		return
	}

	NewHTMXResponse().
		TriggerOrderChanged().
		TriggerSuccessNotification("Pedido atualizado").
		BodyJSON(viewOrder(order)).
		Write(w)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.orders.DeleteOrder(r.Context(), id); err != nil {
		writeOrderError(w, r, err, "Delete order failed")
		return
	}

	NewHTMXResponse().
		TriggerOrderChanged().
		TriggerSuccessNotification("Pedido removido").
		Write(w)
}

// parseOrderBody decodes an order document. Orders always arrive as JSON:
// the parts structure is too nested for form encoding.
func parseOrderBody(r *http.Request) (core.Order, *HTMXResponseBuilder) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		return core.Order{}, BadRequestError("Formato de requisição inválido")
	}
	if !parser.IsJSON() {
		return core.Order{}, BadRequestError("Pedido deve ser enviado como JSON")
	}

	var order core.Order
	if err := json.Unmarshal(parser.GetRaw(), &order); err != nil {
		return core.Order{}, BadRequestError("JSON inválido")
	}
	order.ClientName = sanitizeInput(order.ClientName)
	order.Observation = sanitizeInput(order.Observation)
	return order, nil
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError("Pedido não encontrado").Write(w)
	case errors.Is(err, core.ErrEmptyClientName):
		UnprocessableEntityError("Nome do cliente é obrigatório").Write(w)
	default:
		slog.ErrorContext(r.Context(), logMsg, "error", err)
		InternalServerError("Erro interno").Write(w)
	}
}
