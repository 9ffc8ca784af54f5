// Package history provides the persisted conversation log and a keyword index
// over it.
package history

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hyperjump/kotae/internal/models"
)

// Index is a bleve keyword index over conversation entries. Entries are keyed
// by their storage id so hits map back to the log.
type Index struct {
	mu    sync.Mutex
	path  string
	index bleve.Index
}

// Hit is one index match.
type Hit struct {
	ID    int64
	Score float64
}

func indexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	entryMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so query words
	// match the exact words that appear in questions and answers.
	textFieldMapping.Analyzer = standard.Name
	entryMapping.AddFieldMappingsAt("message", textFieldMapping)
	entryMapping.AddFieldMappingsAt("response", textFieldMapping)
	im.DefaultMapping = entryMapping
	return im
}

// NewIndex creates or opens a bleve index at path. An empty path builds an
// in-memory index (used in tests and when indexing is ephemeral).
func NewIndex(path string) (*Index, error) {
	idx, err := openIndex(path)
	if err != nil {
		return nil, err
	}
	return &Index{path: path, index: idx}, nil
}

func openIndex(path string) (bleve.Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(indexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return idx, nil
	}
	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open history index: %w", openErr)
		}
		return idx, nil
	}
	idx, err := bleve.New(path, indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}
	return idx, nil
}

// Add indexes one conversation entry.
func (i *Index) Add(entry models.ChatEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	doc := map[string]interface{}{
		"message":  entry.Message,
		"response": entry.Response,
	}
	return i.index.Index(strconv.FormatInt(entry.ID, 10), doc)
}

// Search runs a match query over messages and responses, returning up to
// limit hits by descending score.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	i.mu.Lock()
	idx := i.index
	i.mu.Unlock()

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}
	hits := make([]Hit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: hit.Score})
	}
	return hits, nil
}

// Reset drops all indexed entries, recreating the index from scratch.
func (i *Index) Reset() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.index.Close(); err != nil {
		return err
	}
	if i.path != "" {
		if err := os.RemoveAll(i.path); err != nil {
			return err
		}
	}
	idx, err := openIndex(i.path)
	if err != nil {
		return err
	}
	i.index = idx
	return nil
}

// Close closes the underlying index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}
