package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/votesathi/internal/models"
)

var storedFields = []string{"document_id", "title", "source", "content", "chunk_index"}

// passageDoc is the indexed shape of a passage.
type passageDoc struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	ChunkIndex float64 `json:"chunk_index"`
}

// BleveIndex implements PassageIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path keeps
// the index in memory.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := newIndexMapping()

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so Hindi and
	// English terms match as written.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("document_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("chunk_index", bleve.NewNumericFieldMapping())

	im.AddDocumentMapping("passage", docMapping)
	im.DefaultType = "passage"
	im.DefaultMapping = docMapping
	return im
}

// Index indexes a passage by its ID, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, p *models.Passage) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("passage ID is required")
	}
	return b.index.Index(p.ID, passageDoc{
		DocumentID: p.DocumentID,
		Title:      p.Title,
		Source:     p.Source,
		Content:    p.Content,
		ChunkIndex: float64(p.ChunkIndex),
	})
}

// Search runs a match query and returns up to limit passages, best first.
// When opts.TitleBoost > 1, title and content are queried separately and
// merged additively so title matches rank higher.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*models.Passage, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	titleBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 1
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	if titleBoost <= 1.0 {
		req := bleve.NewSearchRequest(buildQuery(query, fuzzyEnabled, fuzziness, ""))
		req.Size = limit
		req.Fields = storedFields
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("Bleve search failed: %w", err)
		}
		out := make([]*models.Passage, len(results.Hits))
		for i, hit := range results.Hits {
			out[i] = passageFromFields(hit.ID, hit.Score, hit.Fields)
		}
		return out, nil
	}
	return b.searchWithTitleBoost(ctx, query, limit, titleBoost, fuzzyEnabled, fuzziness)
}

// searchWithTitleBoost merges scores as (titleScore * titleBoost) + contentScore.
func (b *BleveIndex) searchWithTitleBoost(ctx context.Context, query string, limit int, titleBoost float64, fuzzyEnabled bool, fuzziness int) ([]*models.Passage, error) {
	// Request enough from each so the merged top "limit" is correct.
	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	passages := make(map[string]*models.Passage)
	scores := make(map[string]float64)
	for _, field := range []string{"title", "content"} {
		req := bleve.NewSearchRequest(buildQuery(query, fuzzyEnabled, fuzziness, field))
		req.Size = reqSize
		req.Fields = storedFields
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("Bleve %s search failed: %w", field, err)
		}
		weight := 1.0
		if field == "title" {
			weight = titleBoost
		}
		for _, hit := range results.Hits {
			scores[hit.ID] += hit.Score * weight
			if _, ok := passages[hit.ID]; !ok {
				passages[hit.ID] = passageFromFields(hit.ID, 0, hit.Fields)
			}
		}
	}

	out := make([]*models.Passage, 0, len(passages))
	for id, p := range passages {
		p.Score = scores[id]
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// buildQuery returns a match query, or a disjunction of per-term fuzzy
// queries when fuzzyEnabled. An empty field searches all fields.
func buildQuery(query string, fuzzyEnabled bool, fuzziness int, field string) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	if !fuzzyEnabled || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		if field != "" {
			mq.SetField(field)
		}
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		if field != "" {
			fq.SetField(field)
		}
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func passageFromFields(id string, score float64, fields map[string]interface{}) *models.Passage {
	p := &models.Passage{ID: id, Score: score}
	p.DocumentID, _ = fields["document_id"].(string)
	p.Title, _ = fields["title"].(string)
	p.Source, _ = fields["source"].(string)
	p.Content, _ = fields["content"].(string)
	if idx, ok := fields["chunk_index"].(float64); ok {
		p.ChunkIndex = int(idx)
	}
	return p
}

// DeleteDocument removes all passages of documentID and returns how many were removed.
func (b *BleveIndex) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	tq := bleve.NewTermQuery(documentID)
	tq.SetField("document_id")

	deleted := 0
	for {
		req := bleve.NewSearchRequest(tq)
		req.Size = 500
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return deleted, fmt.Errorf("Bleve delete lookup failed: %w", err)
		}
		if len(results.Hits) == 0 {
			return deleted, nil
		}
		batch := b.index.NewBatch()
		for _, hit := range results.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return deleted, fmt.Errorf("Bleve delete failed: %w", err)
		}
		deleted += len(results.Hits)
	}
}

// DocCount returns the number of indexed passages.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
