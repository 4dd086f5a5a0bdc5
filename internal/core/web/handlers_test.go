package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

// createTestBookmark creates a bookmark through the API and returns its view.
func createTestBookmark(t *testing.T, server *Server, owner, url string, tags []string) bookmarkView {
	t.Helper()
	payload := map[string]any{"url": url, "tags": tags}
	body, _ := json.Marshal(payload)
	w := doRequest(t, server, http.MethodPost, "/api/bookmarks/", owner, strings.NewReader(string(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var view bookmarkView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode bookmark: %v", err)
	}
	return view
}

// TestCreateBookmarkHandler tests POST /api/bookmarks/.
func TestCreateBookmarkHandler(t *testing.T) {
	server := newTestServer(t)

	t.Run("creates enriched bookmark", func(t *testing.T) {
		view := createTestBookmark(t, server, "alice",
			"https://example.com/article?utm_source=feed&page=2", []string{" Go ", "go"})

		if view.ID == "" {
			t.Error("expected non-empty ID")
		}
		// Tracking params are stripped, the rest survive
		if view.URL != "https://example.com/article?page=2" {
			t.Errorf("expected normalized URL, got %q", view.URL)
		}
		if view.Title != "Stub Title" {
			t.Errorf("expected enriched title, got %q", view.Title)
		}
		if view.Favicon != "https://stub.example/icon.png" {
			t.Errorf("expected enriched favicon, got %q", view.Favicon)
		}
		if view.Summary == "" {
			t.Error("expected non-empty summary")
		}
		if view.EnrichMethod != "preview-api" {
			t.Errorf("expected method 'preview-api', got %q", view.EnrichMethod)
		}
		if len(view.Tags) != 1 || view.Tags[0] != "go" {
			t.Errorf("expected tags [go], got %v", view.Tags)
		}
		if view.Position != 1 {
			t.Errorf("expected position 1, got %d", view.Position)
		}
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/bookmarks/", "alice",
			strings.NewReader(`{"url": "not a url"}`))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		if !strings.Contains(w.Body.String(), CodeInvalidURL) {
			t.Errorf("expected %s in body, got %q", CodeInvalidURL, w.Body.String())
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/bookmarks/", "alice",
			strings.NewReader(`{not json`))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		if !strings.Contains(w.Body.String(), CodeInvalidRequest) {
			t.Errorf("expected %s in body, got %q", CodeInvalidRequest, w.Body.String())
		}
	})
}

// TestListBookmarksHandler tests GET /api/bookmarks/.
func TestListBookmarksHandler(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 3; i++ {
		createTestBookmark(t, server, "alice", fmt.Sprintf("https://example.com/%d", i), nil)
	}
	createTestBookmark(t, server, "bob", "https://example.com/bob", nil)

	t.Run("lists own bookmarks with pagination", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/bookmarks/?limit=2", "alice", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var result listView
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode list: %v", err)
		}
		if len(result.Bookmarks) != 2 {
			t.Errorf("expected 2 bookmarks, got %d", len(result.Bookmarks))
		}
		if result.Total != 3 {
			t.Errorf("expected total 3, got %d", result.Total)
		}
		if !result.HasMore {
			t.Error("expected HasMore to be true")
		}
	})

	t.Run("never includes other owners", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/bookmarks/", "bob", nil)
		var result listView
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode list: %v", err)
		}
		if result.Total != 1 {
			t.Errorf("expected bob to see 1 bookmark, got %d", result.Total)
		}
	})
}

// TestDeleteBookmarkHandler tests DELETE /api/bookmarks/{id}.
func TestDeleteBookmarkHandler(t *testing.T) {
	server := newTestServer(t)
	view := createTestBookmark(t, server, "alice", "https://example.com", nil)

	t.Run("foreign owner gets 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodDelete, "/api/bookmarks/"+view.ID, "bob", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
		if !strings.Contains(w.Body.String(), CodeNotFound) {
			t.Errorf("expected %s in body, got %q", CodeNotFound, w.Body.String())
		}
	})

	t.Run("owner deletes successfully", func(t *testing.T) {
		w := doRequest(t, server, http.MethodDelete, "/api/bookmarks/"+view.ID, "alice", nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
		}
	})

	t.Run("second delete gets 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodDelete, "/api/bookmarks/"+view.ID, "alice", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

// TestUpdateTagsHandler tests PATCH /api/bookmarks/{id}/tags.
func TestUpdateTagsHandler(t *testing.T) {
	server := newTestServer(t)
	view := createTestBookmark(t, server, "alice", "https://example.com", []string{"old"})

	t.Run("replaces tags", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPatch, "/api/bookmarks/"+view.ID+"/tags", "alice",
			strings.NewReader(`{"tags": [" Go ", "WEB", "go"]}`))
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var updated bookmarkView
		if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
			t.Fatalf("failed to decode bookmark: %v", err)
		}
		if len(updated.Tags) != 2 || updated.Tags[0] != "go" || updated.Tags[1] != "web" {
			t.Errorf("expected tags [go web], got %v", updated.Tags)
		}
	})

	t.Run("unknown bookmark gets 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPatch, "/api/bookmarks/no-such-id/tags", "alice",
			strings.NewReader(`{"tags": ["go"]}`))
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

// TestReorderHandler tests PUT /api/bookmarks/reorder.
func TestReorderHandler(t *testing.T) {
	server := newTestServer(t)

	a := createTestBookmark(t, server, "alice", "https://a.com", nil)
	b := createTestBookmark(t, server, "alice", "https://b.com", nil)
	c := createTestBookmark(t, server, "alice", "https://c.com", nil)

	payload := fmt.Sprintf(`{"items": [
		{"id": %q, "position": 1},
		{"id": %q, "position": 2},
		{"id": %q, "position": 3}
	]}`, c.ID, a.ID, b.ID)

	w := doRequest(t, server, http.MethodPut, "/api/bookmarks/reorder", "alice", strings.NewReader(payload))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, w.Code, w.Body.String())
	}

	list := doRequest(t, server, http.MethodGet, "/api/bookmarks/", "alice", nil)
	var result listView
	if err := json.Unmarshal(list.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	want := []string{c.ID, a.ID, b.ID}
	for i, id := range want {
		if result.Bookmarks[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i+1, id, result.Bookmarks[i].ID)
		}
	}
}

// TestSearchHandler tests GET /api/bookmarks/search.
func TestSearchHandler(t *testing.T) {
	server := newTestServer(t)

	tutorial := createTestBookmark(t, server, "alice", "https://go.dev/tutorial", []string{"go", "tutorial"})
	createTestBookmark(t, server, "alice", "https://example.com/recipes", []string{"cooking"})

	t.Run("query with tag filter", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/bookmarks/search?q=tutorial&tags=go", "alice", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var result struct {
			Bookmarks []bookmarkView `json:"bookmarks"`
			Total     int            `json:"total"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode search result: %v", err)
		}
		if result.Total != 1 {
			t.Fatalf("expected 1 result, got %d", result.Total)
		}
		if result.Bookmarks[0].ID != tutorial.ID {
			t.Errorf("expected tutorial bookmark, got %q", result.Bookmarks[0].URL)
		}
	})

	t.Run("no matches returns empty list", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/bookmarks/search?q=quantum", "alice", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"total":0`) {
			t.Errorf("expected zero total, got %q", w.Body.String())
		}
	})
}

// TestRefreshHandler tests POST /api/bookmarks/{id}/refresh.
func TestRefreshHandler(t *testing.T) {
	server := newTestServer(t)
	view := createTestBookmark(t, server, "alice", "https://example.com", nil)

	t.Run("queues a refresh", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/bookmarks/"+view.ID+"/refresh", "alice", nil)
		if w.Code != http.StatusAccepted {
			t.Fatalf("expected status %d, got %d: %s", http.StatusAccepted, w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "queued") {
			t.Errorf("expected queued status, got %q", w.Body.String())
		}
	})

	t.Run("foreign owner gets 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/bookmarks/"+view.ID+"/refresh", "bob", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

// TestAnalyticsHandler tests GET /api/analytics.
func TestAnalyticsHandler(t *testing.T) {
	server := newTestServer(t)

	createTestBookmark(t, server, "alice", "https://github.com/a", []string{"go"})
	createTestBookmark(t, server, "alice", "https://github.com/b", []string{"go"})

	w := doRequest(t, server, http.MethodGet, "/api/analytics", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var analytics struct {
		Total      int `json:"total"`
		Last7Days  int `json:"last_7_days"`
		TopDomains []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"top_domains"`
		DailyCounts []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"daily_counts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &analytics); err != nil {
		t.Fatalf("failed to decode analytics: %v", err)
	}
	if analytics.Total != 2 {
		t.Errorf("expected total 2, got %d", analytics.Total)
	}
	if analytics.Last7Days != 2 {
		t.Errorf("expected 2 in last 7 days, got %d", analytics.Last7Days)
	}
	if len(analytics.TopDomains) != 1 || analytics.TopDomains[0].Name != "github.com" || analytics.TopDomains[0].Count != 2 {
		t.Errorf("expected top domain github.com:2, got %v", analytics.TopDomains)
	}
	if len(analytics.DailyCounts) != 30 {
		t.Errorf("expected 30 histogram days, got %d", len(analytics.DailyCounts))
	}
}
