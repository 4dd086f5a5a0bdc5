package web

import (
	"net/http"

	"go.uber.org/zap"
)

func (ws *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := ws.db.GetAnalytics(ownerFromContext(r.Context()))
	if err != nil {
		ws.log.Error("failed to compute analytics", zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeAnalyticsFailed, "failed to compute analytics")
		return
	}
	ws.renderJSON(w, http.StatusOK, analytics)
}
