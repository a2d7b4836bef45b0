package catalog

import (
	"context"
	"fmt"
)

// SeedDatasets returns the curated data.gov.in resources the catalog starts
// with. These IDs are known-good and give coverage for rainfall and crop
// questions before discovery has run even once.
func SeedDatasets() []Dataset {
	return []Dataset{
		{
			DatasetID:     "9ef84268-d588-465a-a308-a864a43d0070",
			ResourceID:    "9ef84268-d588-465a-a308-a864a43d0070",
			Name:          "Rainfall Statistics",
			Publisher:     "India Meteorological Department",
			Format:        "json",
			Category:      CategoryClimate,
			SampleColumns: []string{"state_name", "district", "year", "jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec", "annual"},
		},
		{
			DatasetID:     "d13f0cc6-efc0-4da3-aadc-a01532c29b34",
			ResourceID:    "d13f0cc6-efc0-4da3-aadc-a01532c29b34",
			Name:          "District-wise Seasonal Rainfall",
			Publisher:     "India Meteorological Department",
			Format:        "json",
			Category:      CategoryClimate,
			SampleColumns: []string{"state_ut_name", "district", "year", "subdivision", "annual", "jan_feb", "mar_may", "jun_sep", "oct_dec"},
		},
		{
			DatasetID:     "d6e6973a-c4cf-4d35-86e0-b9ea0e45a496",
			ResourceID:    "d6e6973a-c4cf-4d35-86e0-b9ea0e45a496",
			Name:          "Actual Rainfall - State Wise",
			Publisher:     "Ministry of Agriculture & Farmers Welfare",
			Format:        "json",
			Category:      CategoryClimate,
			SampleColumns: []string{"state_name", "year", "subdivision", "actual_rainfall", "normal_rainfall", "deviation"},
		},
		{
			DatasetID:     "52e9a4e9-d74e-4ca7-9cfa-23c3e5799c4f",
			ResourceID:    "52e9a4e9-d74e-4ca7-9cfa-23c3e5799c4f",
			Name:          "Crop Production Statistics",
			Publisher:     "Ministry of Agriculture & Farmers Welfare",
			Format:        "json",
			Category:      CategoryAgriculture,
			SampleColumns: []string{"state_name", "district", "crop_year", "season", "crop", "area", "production", "yield"},
		},
		{
			DatasetID:     "d6fb2a81-97c4-4e65-b4b4-bf0e7b8f5e4d",
			ResourceID:    "d6fb2a81-97c4-4e65-b4b4-bf0e7b8f5e4d",
			Name:          "District-wise Crop Production",
			Publisher:     "Ministry of Agriculture & Farmers Welfare",
			Format:        "json",
			Category:      CategoryAgriculture,
			SampleColumns: []string{"state", "district", "crop", "year", "area_in_hectare", "production_in_tonnes", "yield_per_hectare"},
		},
		{
			DatasetID:     "94eee5ae-8b3b-4f27-bc61-de7f926c7f51",
			ResourceID:    "94eee5ae-8b3b-4f27-bc61-de7f926c7f51",
			Name:          "State-wise Agricultural Production",
			Publisher:     "Ministry of Agriculture & Farmers Welfare",
			Format:        "json",
			Category:      CategoryAgriculture,
			SampleColumns: []string{"state_name", "year", "crop", "production", "area", "productivity"},
		},
		{
			DatasetID:     "6a1eb413-e926-4810-92c6-f9cf14074062",
			ResourceID:    "6a1eb413-e926-4810-92c6-f9cf14074062",
			Name:          "Foodgrains Production",
			Publisher:     "Ministry of Agriculture & Farmers Welfare",
			Format:        "json",
			Category:      CategoryAgriculture,
			SampleColumns: []string{"year", "state", "foodgrain", "area", "production", "yield"},
		},
	}
}

// Seed upserts the seed datasets. Idempotent: safe to run on every startup.
func (s *Store) Seed(ctx context.Context) error {
	for _, d := range SeedDatasets() {
		if err := s.Upsert(ctx, d); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}
	s.logger.Debug("seeded catalog", "datasets", len(SeedDatasets()))
	return nil
}
