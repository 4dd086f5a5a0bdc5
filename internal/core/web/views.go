package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/seckatie/linkhoard/internal/core/db"
	"go.uber.org/zap"
)

// Stable error codes surfaced to the UI layer, one per operation.
const (
	CodeInvalidURL           = "INVALID_URL"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeCreateBookmarkFailed = "CREATE_BOOKMARK_FAILED"
	CodeListBookmarksFailed  = "LIST_BOOKMARKS_FAILED"
	CodeDeleteBookmarkFailed = "DELETE_BOOKMARK_FAILED"
	CodeUpdateTagsFailed     = "UPDATE_TAGS_FAILED"
	CodeReorderFailed        = "REORDER_FAILED"
	CodeSearchFailed         = "SEARCH_FAILED"
	CodeAnalyticsFailed      = "ANALYTICS_FAILED"
	CodeRefreshFailed        = "REFRESH_FAILED"
)

type bookmarkView struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Favicon      string   `json:"favicon"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	Position     int64    `json:"position"`
	CreatedAt    string   `json:"created_at"`
	EnrichMethod string   `json:"enrich_method,omitempty"`
}

func toBookmarkView(b db.Bookmark) bookmarkView {
	return bookmarkView{
		ID:           b.ID,
		URL:          b.URL,
		Title:        b.Title,
		Favicon:      b.Favicon,
		Summary:      b.Summary,
		Tags:         b.Tags,
		Position:     b.Position,
		CreatedAt:    b.CreatedAt,
		EnrichMethod: b.EnrichMethod,
	}
}

func toBookmarkViews(bookmarks []db.Bookmark) []bookmarkView {
	views := make([]bookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		views = append(views, toBookmarkView(b))
	}
	return views
}

type listView struct {
	Bookmarks []bookmarkView `json:"bookmarks"`
	Total     int            `json:"total"`
	HasMore   bool           `json:"has_more"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorView struct {
	Error errorBody `json:"error"`
}

// renderJSON writes a JSON response. Encoding failures are logged; headers
// are already gone at that point.
func (ws *Server) renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.log.Error("failed to encode response", zap.Error(err))
	}
}

// renderError writes the stable error envelope the UI displays directly.
func (ws *Server) renderError(w http.ResponseWriter, status int, code, message string) {
	ws.renderJSON(w, status, errorView{Error: errorBody{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}})
}
