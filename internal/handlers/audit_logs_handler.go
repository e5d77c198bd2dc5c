package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store audit.Store
	log   *zap.Logger
}

func NewAuditLogsHandler(store audit.Store, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, log: log}
}

// List returns the newest entries first. Filters: entity_id, action, limit.
func (h *AuditLogsHandler) List(c *gin.Context) {
	entityID, ok := queryUint(c, "entity_id")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httperr.BadRequest(c, "invalid_limit", "limit must be a positive integer.")
			return
		}
		limit = n
	}

	logs, err := h.store.List(c.Request.Context(), audit.Filter{
		Action:   c.Query("action"),
		EntityID: entityID,
		Limit:    limit,
	})
	if err != nil {
		h.log.Error("audit log listing failed", zap.Error(err))
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.List(c, logs)
}
