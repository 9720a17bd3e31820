// Package domain contains the core data structures for the application,
// independent of the database or API layers.
package domain

import (
	"math"
	"time"
)

// BlockType identifies the kind of content a block holds.
type BlockType string

const (
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeImage     BlockType = "image"
)

// BlockProps carries the optional attributes of a block. FileID references
// externally stored content in the blob store.
type BlockProps struct {
	FileID         string `json:"fileId,omitempty"`
	LoadedFromFile bool   `json:"loadedFromFile,omitempty"`
}

// Block is one typed unit of note content. The JSON shape matches the
// serialized blocksData field stored with each note.
type Block struct {
	Type    BlockType  `json:"type"`
	Content string     `json:"content"`
	Props   BlockProps `json:"props,omitempty"`
}

// NeedsResolve reports whether the block's real content lives in the blob
// store and has not been loaded yet.
func (b Block) NeedsResolve(sentinel string) bool {
	return b.Type == BlockTypeParagraph && b.Content == sentinel && b.Props.FileID != "" && !b.Props.LoadedFromFile
}

// Position is a 2-D point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are real numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// SourceMetadata describes the web page a clipped note came from.
type SourceMetadata struct {
	SiteName      string `json:"siteName,omitempty"`
	Description   string `json:"description,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedTime string `json:"publishedTime,omitempty"`
	URL           string `json:"url,omitempty"`
}

// Note represents a single user-authored unit of content: a thought, a
// note, or a captured web clip.
type Note struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Content   string          `json:"content"`
	Blocks    []Block         `json:"blocks,omitempty"`
	IsPublic  bool            `json:"isPublic"`
	Tags      []string        `json:"tags,omitempty"`
	Position  *Position       `json:"position,omitempty"`
	Source    *SourceMetadata `json:"source,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`

	// ContentURL is a direct download link for offloaded content, filled
	// in on reads. It is never persisted.
	ContentURL string `json:"contentUrl,omitempty"`
}

// HasCategory reports whether the note participates in graph and canvas
// layout. Notes without a category are excluded from those views.
func (n Note) HasCategory() bool {
	return n.Category != ""
}

// OffloadedFileID returns the blob reference of the first offloaded
// block, or "" when the note's content is fully inline.
func (n Note) OffloadedFileID() string {
	for _, b := range n.Blocks {
		if b.Props.FileID != "" {
			return b.Props.FileID
		}
	}
	return ""
}

// Layout is the per-category canvas record holding the user-drawn
// connection set for one owner's category working set. It is a first-class
// record keyed by (OwnerID, Category) rather than a field piggybacked on an
// arbitrary note of the category.
type Layout struct {
	OwnerID        string    `json:"ownerId"`
	Category       string    `json:"category"`
	ConnectionsRef string    `json:"connectionsRef,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CanvasEdge is one user-drawn connection between two notes on the canvas.
// Unlike graph view edges these are unrestricted: arbitrary note-to-note
// links that may form cycles.
type CanvasEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}
