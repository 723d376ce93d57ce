package models

import "time"

// Deck represents a named, owned collection of cards
type Deck struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	UserID      int64      `json:"user_id"`
	IsPublic    bool       `json:"is_public"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// DeckWithMeta extends Deck with owner and viewer-specific info
type DeckWithMeta struct {
	Deck
	Owner     PublicProfile `json:"owner"`
	CardCount int           `json:"card_count"`
	IsStarred bool          `json:"is_starred"`
	StarCount int           `json:"star_count"`
}

// DeckComment is a user comment on a deck
type DeckComment struct {
	ID        int64         `json:"id"`
	DeckID    int64         `json:"deck_id"`
	UserID    int64         `json:"user_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	User      PublicProfile `json:"user"`
}

// DeckFilter narrows deck listings
type DeckFilter struct {
	Search     string
	Tag        string
	PublicOnly bool
	OwnerID    int64 // 0 means any owner
	Limit      int
	Offset     int
}
