package db

import "go.uber.org/zap"

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when bookmarks are created, updated, deleted,
// or when their enrichment state changes. Register listeners to react to
// these changes, e.g. to queue a bookmark for re-enrichment after its
// enrichment state is cleared.

// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	// OnBookmarkCreatedEvent is emitted when a bookmark is created.
	OnBookmarkCreatedEvent EventKind = iota
	// OnBookmarkDeletedEvent is emitted when a bookmark is deleted.
	OnBookmarkDeletedEvent
	// OnBookmarkUpdatedEvent is emitted when a bookmark's tags are updated.
	OnBookmarkUpdatedEvent
	// OnEnrichmentSavedEvent is emitted when an enrichment result is saved.
	OnEnrichmentSavedEvent
	// OnRefreshRequestedEvent is emitted when a bookmark's enrichment is
	// cleared for re-enrichment.
	OnRefreshRequestedEvent
)

func (k EventKind) String() string {
	switch k {
	case OnBookmarkCreatedEvent:
		return "bookmark_created"
	case OnBookmarkDeletedEvent:
		return "bookmark_deleted"
	case OnBookmarkUpdatedEvent:
		return "bookmark_updated"
	case OnEnrichmentSavedEvent:
		return "enrichment_saved"
	case OnRefreshRequestedEvent:
		return "refresh_requested"
	default:
		return "unknown"
	}
}

// BookmarkCreatedEvent is emitted after a new bookmark is successfully inserted.
type BookmarkCreatedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkCreatedEvent) Kind() EventKind { return OnBookmarkCreatedEvent }

// BookmarkUpdatedEvent is emitted after a bookmark's tags are updated.
type BookmarkUpdatedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkUpdatedEvent) Kind() EventKind { return OnBookmarkUpdatedEvent }

// BookmarkDeletedEvent is emitted after a bookmark is deleted.
// The Bookmark field contains the state before deletion (if available).
type BookmarkDeletedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkDeletedEvent) Kind() EventKind { return OnBookmarkDeletedEvent }

// EnrichmentSavedEvent is emitted after an enrichment result is saved.
type EnrichmentSavedEvent struct {
	BookmarkID string
	Method     string
}

func (e EnrichmentSavedEvent) Kind() EventKind { return OnEnrichmentSavedEvent }

// RefreshRequestedEvent is emitted after a bookmark's enrichment state is
// cleared so it can be re-enriched.
type RefreshRequestedEvent struct {
	Owner      string
	BookmarkID string
}

func (e RefreshRequestedEvent) Kind() EventKind { return OnRefreshRequestedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the DB operation succeeds.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	listeners := db.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			db.log.Error("event listener error",
				zap.Stringer("event", event.Kind()),
				zap.Error(err))
		}
	}
}
