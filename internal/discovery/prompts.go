package discovery

import (
	"fmt"
	"strings"

	"github.com/samarthdata/samarth/internal/catalog"
)

func keywordPrompt(question string) string {
	return fmt.Sprintf(`Extract 2-4 search keywords from this question that would be useful for finding relevant datasets on data.gov.in.

User Question: %s

Rules:
- Return keywords related to the topic (e.g., "rainfall", "crop production", "temperature")
- Focus on data types, not locations or time periods
- Return ONLY a comma-separated list of keywords
- Examples: "rainfall, monsoon" or "crop yield, agriculture production"

Search Keywords:`, question)
}

func categorizePrompt(title, description string) string {
	return fmt.Sprintf(`Categorize this dataset as either "climate" or "agriculture" based on its title and description.

Title: %s
Description: %s

Rules:
- Return ONLY one word: "climate" or "agriculture" or "other"
- Climate datasets include: rainfall, temperature, weather, meteorological data, IMD data
- Agriculture datasets include: crop production, yield, farming, agricultural statistics
- If it doesn't clearly fit either category, return "other"

Category:`, title, description)
}

func selectPrompt(question string, datasets []catalog.Dataset) string {
	var list strings.Builder
	for _, d := range datasets {
		fmt.Fprintf(&list, "- %s: %s (%s)\n", d.DatasetID, d.Name, d.Category)
	}

	return fmt.Sprintf(`Given the following user question and available datasets, select the most relevant dataset IDs that would help answer the question.

User Question: %s

Available Datasets:
%s
Return ONLY a comma-separated list of dataset IDs that are relevant.
If the question involves both climate and agriculture, include datasets from both categories.
If no datasets are relevant, return "NONE".

Relevant Dataset IDs:`, question, list.String())
}
