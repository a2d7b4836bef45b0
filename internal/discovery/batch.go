package discovery

import (
	"context"
	"fmt"

	"github.com/samarthdata/samarth/internal/catalog"
)

// categorySearchTerms drive batch discovery: the standing vocabulary of each
// category on the platform.
var categorySearchTerms = map[string][]string{
	catalog.CategoryClimate: {
		"rainfall", "IMD rainfall", "temperature", "weather",
		"meteorological", "precipitation", "monsoon",
	},
	catalog.CategoryAgriculture: {
		"crop production", "agricultural statistics", "agriculture",
		"crop yield", "farming", "harvest", "cultivation",
	},
}

// maxPerCategory caps how many datasets one batch run registers per category.
const maxPerCategory = 10

// DiscoverAll runs batch discovery across both category vocabularies and
// returns how many datasets were registered per category. Used by the
// `discover` command to pre-populate the catalog.
func (s *Service) DiscoverAll(ctx context.Context) (map[string]int, error) {
	added := map[string]int{}

	for category, terms := range categorySearchTerms {
		seen := map[string]bool{}
		registered := 0

		for _, term := range terms {
			if registered >= maxPerCategory {
				break
			}

			hits, err := s.search.SearchCatalog(ctx, term, perKeywordResults)
			if err != nil {
				return added, fmt.Errorf("searching for %q: %w", term, err)
			}

			for _, hit := range hits {
				if registered >= maxPerCategory || seen[hit.ResourceID] {
					continue
				}
				seen[hit.ResourceID] = true

				known, err := s.store.HasResource(ctx, hit.ResourceID)
				if err != nil {
					return added, fmt.Errorf("checking catalog for %s: %w", hit.ResourceID, err)
				}
				if known {
					continue
				}

				if err := s.store.Upsert(ctx, datasetFromHit(hit, category)); err != nil {
					return added, fmt.Errorf("registering dataset %s: %w", hit.ResourceID, err)
				}
				registered++
				s.logger.Info("registered dataset",
					"category", category, "resource_id", hit.ResourceID, "title", hit.Title)
			}
		}
		added[category] = registered
	}

	return added, nil
}
