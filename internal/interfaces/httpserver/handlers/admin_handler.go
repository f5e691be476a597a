package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatbot-research/experiment-api/internal/domain/apperrors"
	"chatbot-research/experiment-api/internal/domain/export"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/interfaces/httpserver/responses"
)

// AdminHandler exposes the researcher-facing listing and export surface.
type AdminHandler struct {
	service export.Service
	log     zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service export.Service, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With().Str("handler", "admin").Logger(),
	}
}

// ListSessions handles GET /admin/sessions.
func (h *AdminHandler) ListSessions(c *gin.Context) {
	filter := session.Filter{}
	if v := c.Query("experiment_id"); v != "" {
		filter.ExperimentID = &v
	}
	if v := c.Query("condition_id"); v != "" {
		filter.ConditionID = &v
	}
	if v := c.Query("status"); v != "" {
		status := session.Status(v)
		filter.Status = &status
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			responses.HandleError(c, apperrors.Newf(apperrors.KindValidation, "invalid limit %q", v))
			return
		}
		filter.Limit = limit
	}

	sessions, err := h.service.ListSessions(c.Request.Context(), filter)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	data := make([]responses.SessionPayload, len(sessions))
	for i := range sessions {
		data[i] = responses.FromSession(&sessions[i])
	}
	c.JSON(http.StatusOK, responses.SessionListResponse{Data: data})
}

// Export handles GET /admin/export. The table query parameter selects the
// data set; format is csv (default) or json; experiment_id optionally scopes
// sessions and messages.
func (h *AdminHandler) Export(c *gin.Context) {
	table := export.Table(c.DefaultQuery("table", string(export.TableMessages)))
	if !table.Valid() {
		responses.HandleError(c, apperrors.Newf(apperrors.KindValidation, "invalid export table %q", table))
		return
	}

	var experimentID *string
	if v := c.Query("experiment_id"); v != "" {
		experimentID = &v
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, err := h.service.ExportCSV(c.Request.Context(), table, experimentID)
		if err != nil {
			responses.HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", table))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)

	case "json":
		payload, err := h.service.ExportJSON(c.Request.Context(), table, experimentID)
		if err != nil {
			responses.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)

	default:
		responses.HandleError(c, apperrors.Newf(apperrors.KindValidation, "invalid export format %q", format))
	}
}
