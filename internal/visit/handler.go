package visit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/visit-tracker/internal"
	"github.com/frahmantamala/visit-tracker/internal/auth"
	"github.com/frahmantamala/visit-tracker/internal/transport"
	"github.com/frahmantamala/visit-tracker/pkg/logger"
)

type ServiceAPI interface {
	ListVisits(principal Principal, params ListParams) (*ListResponse, error)
	UpdateVisit(principal Principal, visitID string, dto UpdateVisitDTO) (*Visit, error)
	ImportVisits(rows []ImportVisitDTO) (int, error)
	DailyReport() (*ListResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) principalFromRequest(r *http.Request) (Principal, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		return Principal{}, false
	}
	return Principal{ID: user.ID, Role: user.Role}, true
}

// ListVisits handles GET /visits.
func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalFromRequest(r)
	if !ok {
		h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	params := ListParams{
		Status:           query.Get("status"),
		PlannedVisitDate: query.Get("plannedVisitDate"),
		BusinessPartner:  query.Get("businessPartner"),
		Page:             query.Get("page"),
	}

	result, err := h.Service.ListVisits(principal, params)
	if err != nil {
		h.Logger.Error("ListVisits: service error", "error", err, "user_id", principal.ID)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to fetch visits"})
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// UpdateVisit handles PATCH /visits/{id}.
func (h *Handler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalFromRequest(r)
	if !ok {
		h.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	visitID := chi.URLParam(r, "id")
	if visitID == "" {
		h.WriteMessage(w, http.StatusBadRequest, "ID is required")
		return
	}

	var dto UpdateVisitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateVisit: invalid request body", "error", err, "visit_id", visitID)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to update visit"})
		return
	}

	updated, err := h.Service.UpdateVisit(principal, visitID, dto)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteMessage(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.Logger.Error("UpdateVisit: service error", "error", err, "visit_id", visitID, "user_id", principal.ID)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to update visit"})
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

// ImportVisits handles POST /visits/import. The route sits behind the
// API key middleware, not the session middleware.
func (h *Handler) ImportVisits(w http.ResponseWriter, r *http.Request) {
	var rows []ImportVisitDTO
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		h.WriteMessage(w, http.StatusBadRequest, "Request body must be an array")
		return
	}

	if len(rows) == 0 {
		h.WriteMessage(w, http.StatusBadRequest, "Request body must not be empty")
		return
	}

	count, err := h.Service.ImportVisits(rows)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteMessage(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.Logger.Error("ImportVisits: service error", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to import visits"})
		return
	}

	h.WriteMessage(w, http.StatusCreated, fmt.Sprintf("%d visits created", count))
}

// DailyReport handles GET /visits/daily-report, also API key protected.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.DailyReport()
	if err != nil {
		h.Logger.Error("DailyReport: service error", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to fetch daily report"})
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
