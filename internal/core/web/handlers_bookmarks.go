package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/seckatie/linkhoard/internal/core"
	"github.com/seckatie/linkhoard/internal/core/db"
	"go.uber.org/zap"
)

type createBookmarkRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// createBookmark validates and normalizes the URL, runs the enrichment
// pipeline, and persists the composed record. Enrichment never fails the
// request; the only externally visible failure is a persistence failure.
func (ws *Server) createBookmark(w http.ResponseWriter, r *http.Request) {
	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.renderError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed request body")
		return
	}

	normalized, err := core.NormalizeURL(req.URL)
	if err != nil {
		ws.renderError(w, http.StatusBadRequest, CodeInvalidURL, err.Error())
		return
	}

	enrichment := ws.enricher.Enrich(r.Context(), normalized)

	b, err := ws.db.CreateBookmark(ownerFromContext(r.Context()), db.CreateBookmarkParams{
		URL:     normalized,
		Title:   enrichment.Title,
		Favicon: enrichment.Favicon,
		Summary: enrichment.Summary,
		Method:  enrichment.Method,
		Tags:    req.Tags,
	})
	if err != nil {
		ws.log.Error("failed to create bookmark", zap.String("url", normalized), zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeCreateBookmarkFailed, "failed to create bookmark")
		return
	}

	ws.renderJSON(w, http.StatusCreated, toBookmarkView(b))
}

func (ws *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	opts := db.ListOptions{
		Limit:     intQuery(r, "limit", 50),
		Offset:    intQuery(r, "offset", 0),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	result, err := ws.db.ListBookmarks(ownerFromContext(r.Context()), opts)
	if err != nil {
		ws.log.Error("failed to list bookmarks", zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeListBookmarksFailed, "failed to list bookmarks")
		return
	}

	ws.renderJSON(w, http.StatusOK, listView{
		Bookmarks: toBookmarkViews(result.Bookmarks),
		Total:     result.Total,
		HasMore:   result.HasMore,
	})
}

func (ws *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ws.db.DeleteBookmark(ownerFromContext(r.Context()), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			ws.renderError(w, http.StatusNotFound, CodeNotFound, "bookmark not found")
			return
		}
		ws.log.Error("failed to delete bookmark", zap.String("id", id), zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeDeleteBookmarkFailed, "failed to delete bookmark")
		return
	}
	ws.renderJSON(w, http.StatusNoContent, nil)
}

type updateTagsRequest struct {
	Tags []string `json:"tags"`
}

func (ws *Server) updateTags(w http.ResponseWriter, r *http.Request) {
	var req updateTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.renderError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed request body")
		return
	}

	id := chi.URLParam(r, "id")
	b, err := ws.db.UpdateTags(ownerFromContext(r.Context()), id, req.Tags)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			ws.renderError(w, http.StatusNotFound, CodeNotFound, "bookmark not found")
			return
		}
		ws.log.Error("failed to update tags", zap.String("id", id), zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeUpdateTagsFailed, "failed to update tags")
		return
	}

	ws.renderJSON(w, http.StatusOK, toBookmarkView(b))
}

type reorderRequest struct {
	Items []db.ReorderItem `json:"items"`
}

func (ws *Server) reorderBookmarks(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.renderError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed request body")
		return
	}

	if err := ws.db.BulkReorder(ownerFromContext(r.Context()), req.Items); err != nil {
		ws.log.Error("failed to reorder bookmarks", zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeReorderFailed, "failed to reorder bookmarks")
		return
	}
	ws.renderJSON(w, http.StatusNoContent, nil)
}

func (ws *Server) searchBookmarks(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := db.SearchQuery{
		Query: params.Get("q"),
		Fuzzy: boolQuery(r, "fuzzy"),
		Rank:  boolQuery(r, "rank"),
	}
	if tags := strings.TrimSpace(params.Get("tags")); tags != "" {
		q.Tags = strings.Split(tags, ",")
	}
	if from := params.Get("from"); from != "" {
		if t, err := parseDate(from); err == nil {
			q.From = t
		}
	}
	if to := params.Get("to"); to != "" {
		if t, err := parseDate(to); err == nil {
			q.To = t
		}
	}

	results, err := ws.db.SearchBookmarks(ownerFromContext(r.Context()), q)
	if err != nil {
		ws.log.Error("failed to search bookmarks", zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeSearchFailed, "failed to search bookmarks")
		return
	}

	ws.renderJSON(w, http.StatusOK, map[string]any{
		"bookmarks": toBookmarkViews(results),
		"total":     len(results),
	})
}

// refreshBookmark clears the bookmark's enrichment state; the background
// workers pick it up from the refresh event.
func (ws *Server) refreshBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ws.db.RequestRefresh(ownerFromContext(r.Context()), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			ws.renderError(w, http.StatusNotFound, CodeNotFound, "bookmark not found")
			return
		}
		ws.log.Error("failed to request refresh", zap.String("id", id), zap.Error(err))
		ws.renderError(w, http.StatusInternalServerError, CodeRefreshFailed, "failed to request refresh")
		return
	}
	ws.renderJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func intQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func boolQuery(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
