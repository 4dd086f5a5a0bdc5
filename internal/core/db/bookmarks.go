package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seckatie/linkhoard/internal/core"
)

// ErrNotFound is returned when a bookmark does not exist or is owned by a
// different caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("bookmark not found")

const bookmarkColumns = `
	id, owner, url, title, favicon, summary, tags, position, created_at,
	COALESCE(enriched_at, ''), COALESCE(enrich_method, '')
`

// CreateBookmarkParams carries the enriched record composed by the caller.
type CreateBookmarkParams struct {
	URL     string
	Title   string
	Favicon string
	Summary string
	Method  string
	Tags    []string
}

// CreateBookmark inserts a new bookmark for owner. The URL must already be
// validated and normalized. Tags are normalized before storage. The position
// is assigned as the owner's current maximum plus one; the read and the
// insert share one transaction so concurrent creates for the same owner
// cannot assign duplicate positions.
//
// Emits a BookmarkCreatedEvent after a successful insert.
func (db *DB) CreateBookmark(owner string, params CreateBookmarkParams) (Bookmark, error) {
	if owner == "" {
		return Bookmark{}, fmt.Errorf("missing owner")
	}
	if err := core.ValidateURL(params.URL); err != nil {
		return Bookmark{}, err
	}

	b := Bookmark{
		ID:           uuid.NewString(),
		Owner:        owner,
		URL:          params.URL,
		Title:        params.Title,
		Favicon:      params.Favicon,
		Summary:      params.Summary,
		Tags:         core.NormalizeTags(params.Tags),
		CreatedAt:    time.Now().Format(time.RFC3339),
		EnrichedAt:   time.Now().Format(time.RFC3339),
		EnrichMethod: params.Method,
	}

	tags, err := encodeTags(b.Tags)
	if err != nil {
		return Bookmark{}, err
	}

	tx, err := db.db.Begin()
	if err != nil {
		return Bookmark{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(position), 0) + 1 FROM bookmarks WHERE owner = ?", owner,
	).Scan(&b.Position); err != nil {
		return Bookmark{}, fmt.Errorf("failed to compute position: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO bookmarks (id, owner, url, title, favicon, summary, tags, position, created_at, enriched_at, enrich_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Owner, b.URL, b.Title, b.Favicon, b.Summary, tags, b.Position, b.CreatedAt, b.EnrichedAt, b.EnrichMethod); err != nil {
		return Bookmark{}, fmt.Errorf("failed to add bookmark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Bookmark{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.emit(BookmarkCreatedEvent{Bookmark: b})

	return b, nil
}

func (db *DB) GetBookmark(owner, id string) (Bookmark, error) {
	row := db.db.QueryRow(
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ? AND owner = ?", id, owner)
	b, err := scanBookmark(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bookmark{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Bookmark{}, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return b, nil
}

// ListOptions controls pagination and ordering for ListBookmarks.
type ListOptions struct {
	Limit  int
	Offset int
	// SortBy is "position" (default) or "created_at".
	SortBy string
	// SortOrder is "asc" (default) or "desc".
	SortOrder string
}

// ListResult is one page of an owner's bookmarks.
type ListResult struct {
	Bookmarks []Bookmark
	Total     int
	HasMore   bool
}

// ListBookmarks returns a page of the owner's bookmarks plus the total
// count. Ties in the sort key are broken by creation time so ordering stays
// stable.
func (db *DB) ListBookmarks(owner string, opts ListOptions) (ListResult, error) {
	sortBy := "position"
	if opts.SortBy == "created_at" {
		sortBy = "created_at"
	}
	order := "ASC"
	if opts.SortOrder == "desc" {
		order = "DESC"
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var total int
	if err := db.db.QueryRow(
		"SELECT COUNT(*) FROM bookmarks WHERE owner = ?", owner,
	).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM bookmarks WHERE owner = ? ORDER BY %s %s, created_at %s LIMIT ? OFFSET ?",
		bookmarkColumns, sortBy, order, order)
	rows, err := db.db.Query(query, owner, opts.Limit, opts.Offset)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks, err := scanBookmarks(rows)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Bookmarks: bookmarks,
		Total:     total,
		HasMore:   opts.Offset+opts.Limit < total,
	}, nil
}

// UpdateTags replaces a bookmark's tags. Tags are normalized before storage.
// Emits a BookmarkUpdatedEvent after a successful update.
func (db *DB) UpdateTags(owner, id string, tags []string) (Bookmark, error) {
	encoded, err := encodeTags(core.NormalizeTags(tags))
	if err != nil {
		return Bookmark{}, err
	}

	res, err := db.db.Exec(
		"UPDATE bookmarks SET tags = ? WHERE id = ? AND owner = ?", encoded, id, owner)
	if err != nil {
		return Bookmark{}, fmt.Errorf("failed to update tags: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Bookmark{}, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return Bookmark{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	b, err := db.GetBookmark(owner, id)
	if err != nil {
		return Bookmark{}, err
	}
	db.emit(BookmarkUpdatedEvent{Bookmark: b})

	return b, nil
}

// DeleteBookmark removes a bookmark.
// Emits a BookmarkDeletedEvent after successful deletion.
func (db *DB) DeleteBookmark(owner, id string) error {
	// Fetch bookmark before deletion to include in the event
	b, _ := db.GetBookmark(owner, id)

	res, err := db.db.Exec("DELETE FROM bookmarks WHERE id = ? AND owner = ?", id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	// If we couldn't fetch earlier, at least include the ID
	if b.ID == "" {
		b.ID = id
		b.Owner = owner
	}
	db.emit(BookmarkDeletedEvent{Bookmark: b})

	return nil
}

// ReorderItem maps a bookmark to its new position.
type ReorderItem struct {
	ID       string `json:"id"`
	Position int64  `json:"position"`
}

// BulkReorder rewrites positions for the given bookmarks in one transaction.
// The caller has already computed the new order; the adapter does not infer
// ordering itself. Items naming foreign or unknown bookmarks are ignored
// rather than failing the batch, which also makes the operation idempotent.
func (db *DB) BulkReorder(owner string, items []ReorderItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE bookmarks SET position = ? WHERE id = ? AND owner = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare reorder statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(item.Position, item.ID, owner); err != nil {
			return fmt.Errorf("failed to reorder bookmark %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ------------------------------
// Enrichment state
// ------------------------------

// ListBookmarksToEnrich returns bookmarks whose enrichment is pending,
// newest first. Used by the background workers and the CLI; spans owners.
func (db *DB) ListBookmarksToEnrich(limit int) ([]Bookmark, error) {
	query := "SELECT " + bookmarkColumns + ` FROM bookmarks
		WHERE enriched_at IS NULL OR enriched_at = ''
		ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks to enrich: %w", err)
	}
	defer rows.Close()

	return scanBookmarks(rows)
}

// SaveEnrichment stores a (re-)enrichment result.
// Emits an EnrichmentSavedEvent after a successful save.
func (db *DB) SaveEnrichment(owner, id, title, favicon, summary, method string) error {
	res, err := db.db.Exec(`
		UPDATE bookmarks
		SET title = ?, favicon = ?, summary = ?, enriched_at = ?, enrich_method = ?
		WHERE id = ? AND owner = ?
	`, title, favicon, summary, time.Now().Format(time.RFC3339), method, id, owner)
	if err != nil {
		return fmt.Errorf("failed to save enrichment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	db.emit(EnrichmentSavedEvent{BookmarkID: id, Method: method})

	return nil
}

// RequestRefresh clears a bookmark's enrichment state so it gets re-enriched.
// Emits a RefreshRequestedEvent after a successful clear.
func (db *DB) RequestRefresh(owner, id string) error {
	res, err := db.db.Exec(`
		UPDATE bookmarks
		SET enriched_at = NULL, enrich_method = NULL
		WHERE id = ? AND owner = ?
	`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to request refresh: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	db.emit(RefreshRequestedEvent{Owner: owner, BookmarkID: id})

	return nil
}

// ------------------------------
// Row helpers
// ------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (Bookmark, error) {
	var b Bookmark
	var tags string
	if err := row.Scan(
		&b.ID, &b.Owner, &b.URL, &b.Title, &b.Favicon, &b.Summary,
		&tags, &b.Position, &b.CreatedAt, &b.EnrichedAt, &b.EnrichMethod,
	); err != nil {
		return Bookmark{}, err
	}
	var err error
	b.Tags, err = decodeTags(tags)
	if err != nil {
		return Bookmark{}, err
	}
	return b, nil
}

func scanBookmarks(rows *sql.Rows) ([]Bookmark, error) {
	var out []Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return out, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(encoded), nil
}

func decodeTags(encoded string) ([]string, error) {
	if encoded == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(encoded), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}
