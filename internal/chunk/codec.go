// Package chunk keeps stored text fields under the document store's
// per-field size ceiling. Oversized content is offloaded to blob storage
// behind a sentinel value and reassembled transparently on read.
package chunk

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"secondbrain-backend/internal/blob"
	"secondbrain-backend/internal/domain"
)

// Sentinel is the inline value stored in place of content that lives in
// the blob store. The exact string is part of the stored-data contract.
const Sentinel = "Content stored in file. Loading..."

// DefaultCeiling is the per-field character limit imposed by the document
// store.
const DefaultCeiling = 700

// unavailablePlaceholder is rendered in place of content whose blob could
// not be fetched. Callers display whatever string comes back, so fetch
// failures must degrade to text rather than an error.
const unavailablePlaceholder = "Content could not be loaded."

// Codec encodes and decodes note content against the size ceiling.
type Codec struct {
	ceiling int
	blobs   blob.Store
	logger  *zap.Logger
}

// NewCodec creates a codec with the given ceiling. A ceiling of zero or
// less falls back to DefaultCeiling.
func NewCodec(ceiling int, blobs blob.Store, logger *zap.Logger) *Codec {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Codec{ceiling: ceiling, blobs: blobs, logger: logger}
}

// Ceiling returns the configured per-field limit.
func (c *Codec) Ceiling() int {
	return c.ceiling
}

// Encode decides how content is stored. Content at or under the ceiling is
// stored inline; anything larger is replaced by the sentinel, and the
// caller must offload the full content to the blob store.
func (c *Codec) Encode(content string) (inline string, blobNeeded bool) {
	if len(content) <= c.ceiling {
		return content, false
	}
	return Sentinel, true
}

// Decode returns a block's text, fetching it from the blob store when the
// block carries a file reference behind the sentinel. A fetch failure
// degrades to a readable placeholder; this boundary never returns an error.
func (c *Codec) Decode(ctx context.Context, b domain.Block) string {
	if !b.NeedsResolve(Sentinel) {
		return b.Content
	}
	data, err := c.blobs.Get(ctx, b.Props.FileID)
	if err != nil {
		c.logger.Warn("failed to fetch offloaded content",
			zap.String("fileId", b.Props.FileID),
			zap.Error(err),
		)
		return unavailablePlaceholder
	}
	return string(data)
}

// Split partitions content into ordered chunks, none exceeding the ceiling.
// Splitting prefers line boundaries; a single line longer than the ceiling
// is hard-split at the ceiling. Concatenating the chunks reconstructs the
// original string exactly.
func (c *Codec) Split(content string) []string {
	return Split(content, c.ceiling)
}

// Split is the pure chunking function used by Codec.Split.
func Split(content string, ceiling int) []string {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if content == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	// SplitAfter keeps the newline with each line so rejoining the chunks
	// yields the original string byte for byte.
	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "" {
			continue
		}
		if current.Len()+len(line) > ceiling {
			flush()
			for len(line) > ceiling {
				chunks = append(chunks, line[:ceiling])
				line = line[ceiling:]
			}
			current.WriteString(line)
			continue
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}

// ParseBlocks deserializes a stored blocksData field. Malformed JSON
// degrades to treating the note as having no structured blocks: the raw
// content field becomes a single paragraph block.
func ParseBlocks(raw, fallbackContent string) []domain.Block {
	if raw == "" {
		return fallbackFor(fallbackContent)
	}
	var blocks []domain.Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return fallbackFor(fallbackContent)
	}
	return blocks
}

func fallbackFor(content string) []domain.Block {
	if content == "" {
		return nil
	}
	return []domain.Block{{Type: domain.BlockTypeParagraph, Content: content}}
}
