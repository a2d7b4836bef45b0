// Package discovery finds data.gov.in datasets relevant to a user question
// and keeps the catalog growing as new questions arrive.
//
// The flow mirrors how a human would use the portal: turn the question into
// a few search keywords, search the catalog by title, decide per hit whether
// it is climate or agriculture data, and register anything new. Selection of
// which cataloged datasets actually serve a question is a separate LLM call
// over the enumerated catalog.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/datagov"
	"github.com/samarthdata/samarth/internal/llm"
	"github.com/samarthdata/samarth/internal/log"
)

// Searcher is the catalog-search surface of the data.gov.in client.
type Searcher interface {
	SearchCatalog(ctx context.Context, query string, maxResults int) ([]datagov.CatalogHit, error)
}

// Catalog is the subset of catalog.Store discovery needs.
type Catalog interface {
	List(ctx context.Context, category string) ([]catalog.Dataset, error)
	HasResource(ctx context.Context, resourceID string) (bool, error)
	Upsert(ctx context.Context, d catalog.Dataset) error
}

// Service discovers and selects datasets.
type Service struct {
	search Searcher
	store  Catalog
	gen    llm.Generator
	logger log.Logger
}

// New creates a discovery service.
func New(search Searcher, store Catalog, gen llm.Generator, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{search: search, store: store, gen: gen, logger: logger}
}

// perKeywordResults is how many search hits each keyword contributes.
const perKeywordResults = 5

// ExtractKeywords derives 2-4 catalog search keywords from a question.
// On model failure it falls back to scanning the question for known domain
// terms, so discovery still works when Gemini is down.
func (s *Service) ExtractKeywords(ctx context.Context, question string) []string {
	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:      keywordPrompt(question),
		Temperature: 0.1,
	})
	if err != nil {
		s.logger.Warn("keyword extraction failed, using fallback", "error", err)
		return fallbackKeywords(question)
	}

	var keywords []string
	for _, k := range strings.Split(strings.TrimSpace(out), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return fallbackKeywords(question)
	}
	if len(keywords) > 4 {
		keywords = keywords[:4]
	}
	return keywords
}

var (
	climateTerms = []string{"rainfall", "temperature", "weather", "monsoon", "precipitation", "climate"}
	agriTerms    = []string{"crop", "agriculture", "farming", "yield", "production", "harvest"}
)

// fallbackKeywords scans the question for known domain terms.
func fallbackKeywords(question string) []string {
	q := strings.ToLower(question)

	var keywords []string
	for _, term := range climateTerms {
		if strings.Contains(q, term) {
			keywords = append(keywords, term)
		}
	}
	for _, term := range agriTerms {
		if strings.Contains(q, term) {
			keywords = append(keywords, term)
		}
	}

	if len(keywords) == 0 {
		return []string{"rainfall", "crop production"}
	}
	if len(keywords) > 4 {
		keywords = keywords[:4]
	}
	return keywords
}

// Categorize classifies a dataset as climate, agriculture, or "" (neither).
// Model failure also yields "": an uncategorizable dataset is skipped, not
// fatal.
func (s *Service) Categorize(ctx context.Context, title, description string) string {
	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:      categorizePrompt(title, description),
		Temperature: 0.1,
	})
	if err != nil {
		s.logger.Warn("categorization failed", "title", title, "error", err)
		return ""
	}

	category := strings.ToLower(strings.TrimSpace(out))
	if category == catalog.CategoryClimate || category == catalog.CategoryAgriculture {
		return category
	}
	return ""
}

// DiscoverForQuestion searches the platform for datasets matching the
// question, registers new finds, and returns the dataset IDs selected as
// relevant plus how many datasets were newly added.
func (s *Service) DiscoverForQuestion(ctx context.Context, question string) (selected []string, added int, err error) {
	keywords := s.ExtractKeywords(ctx, question)
	s.logger.Debug("discovery keywords", "question", question, "keywords", keywords)

	seen := map[string]bool{}
	var hits []datagov.CatalogHit
	for _, keyword := range keywords {
		found, err := s.search.SearchCatalog(ctx, keyword, perKeywordResults)
		if err != nil {
			return nil, 0, fmt.Errorf("searching for %q: %w", keyword, err)
		}
		for _, hit := range found {
			if !seen[hit.ResourceID] {
				seen[hit.ResourceID] = true
				hits = append(hits, hit)
			}
		}
	}
	s.logger.Debug("discovery search complete", "unique_hits", len(hits))

	for _, hit := range hits {
		known, err := s.store.HasResource(ctx, hit.ResourceID)
		if err != nil {
			return nil, 0, fmt.Errorf("checking catalog for %s: %w", hit.ResourceID, err)
		}
		if known {
			continue
		}

		category := s.Categorize(ctx, hit.Title, hit.Description)
		if category == "" {
			s.logger.Debug("dataset outside climate/agriculture, skipping",
				"resource_id", hit.ResourceID, "title", hit.Title)
			continue
		}

		if err := s.store.Upsert(ctx, datasetFromHit(hit, category)); err != nil {
			return nil, 0, fmt.Errorf("registering dataset %s: %w", hit.ResourceID, err)
		}
		added++
		s.logger.Info("registered new dataset",
			"resource_id", hit.ResourceID, "title", hit.Title, "category", category)
	}

	selected, err = s.SelectRelevant(ctx, question)
	if err != nil {
		return nil, added, err
	}
	return selected, added, nil
}

// genericTitles are dataset titles too vague to stand alone.
var genericTitles = map[string]bool{
	"rainfall":    true,
	"temperature": true,
	"production":  true,
	"crop":        true,
	"data":        true,
}

// datasetFromHit builds a catalog entry from a search hit. Short or generic
// titles get the publisher appended so entries stay distinguishable in
// selection prompts.
func datasetFromHit(hit datagov.CatalogHit, category string) catalog.Dataset {
	publisher := hit.Publisher
	if publisher == "" {
		publisher = hit.Source
	}
	if publisher == "" {
		publisher = "data.gov.in"
	}

	name := hit.Title
	if publisher != "data.gov.in" &&
		(len(strings.Fields(hit.Title)) <= 2 || genericTitles[strings.ToLower(hit.Title)]) {
		name = fmt.Sprintf("%s (%s)", hit.Title, publisher)
	}

	return catalog.Dataset{
		DatasetID:  hit.ResourceID,
		ResourceID: hit.ResourceID,
		Name:       name,
		Publisher:  publisher,
		Format:     "json",
		Category:   category,
	}
}

// SelectRelevant asks the model which cataloged datasets serve the question.
// "NONE" means none; a model failure or an answer naming no known dataset
// falls back to all catalog IDs so the pipeline still has something to fetch.
func (s *Service) SelectRelevant(ctx context.Context, question string) ([]string, error) {
	climate, err := s.store.List(ctx, catalog.CategoryClimate)
	if err != nil {
		return nil, fmt.Errorf("listing climate datasets: %w", err)
	}
	agri, err := s.store.List(ctx, catalog.CategoryAgriculture)
	if err != nil {
		return nil, fmt.Errorf("listing agriculture datasets: %w", err)
	}

	all := append(climate, agri...)
	if len(all) == 0 {
		return nil, nil
	}

	allIDs := make([]string, len(all))
	known := map[string]bool{}
	for i, d := range all {
		allIDs[i] = d.DatasetID
		known[d.DatasetID] = true
	}

	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:      selectPrompt(question, all),
		Temperature: 0.1,
	})
	if err != nil {
		s.logger.Warn("dataset selection failed, using all datasets", "error", err)
		return allIDs, nil
	}

	result := strings.TrimSpace(llm.StripFences(out))
	if strings.EqualFold(result, "NONE") {
		return nil, nil
	}

	var selected []string
	for _, id := range strings.Split(result, ",") {
		id = strings.TrimSpace(id)
		if known[id] {
			selected = append(selected, id)
		}
	}
	if len(selected) == 0 {
		s.logger.Warn("selection answer named no known dataset, using all", "answer", result)
		return allIDs, nil
	}
	return selected, nil
}
