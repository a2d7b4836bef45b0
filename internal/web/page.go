package web

import (
	"fmt"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/samarthdata/samarth/internal/catalog"
)

// exampleQuestions seed the UI so a first-time visitor has something to click.
var exampleQuestions = []string{
	"How much rainfall did Odisha receive in 1951?",
	"Which state produced the most rice in 2000?",
	"Compare annual rainfall between Kerala and Rajasthan",
	"What was the wheat production trend in Punjab?",
}

// indexPage renders the single-page UI.
func indexPage(stats catalog.Stats) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    "Samarth - Ask India's Open Data",
		Language: "en",
		Head: []g.Node{
			h.StyleEl(g.Raw(appCSS)),
		},
		Body: []g.Node{
			h.Header(
				h.H1(g.Text("Samarth")),
				h.P(h.Class("tagline"), g.Text("Conversational answers over data.gov.in climate and agriculture datasets")),
			),
			h.Main(
				h.Div(h.Class("ask-panel"),
					h.Form(h.ID("ask-form"),
						h.Textarea(
							h.ID("question"),
							h.Name("question"),
							h.Placeholder("Ask about rainfall, temperature, or crop production..."),
							h.Rows("3"),
						),
						h.Div(h.Class("controls"),
							h.Label(
								h.Input(h.Type("checkbox"), h.ID("auto-discover")),
								g.Text(" Discover new datasets"),
							),
							h.Label(
								g.Text("Datasets "),
								h.Input(h.Type("number"), h.ID("max-datasets"), h.Value("5"), h.Min("1"), h.Max("10")),
							),
							h.Label(
								g.Text("Sample rows "),
								h.Input(h.Type("number"), h.ID("max-rows"), h.Value("500"), h.Min("50"), h.Max("2000"), h.Step("50")),
							),
							h.Button(h.Type("submit"), g.Text("Ask")),
						),
					),
					examplesList(),
					h.Div(h.ID("status"), h.Class("status")),
					h.Div(h.ID("answer"), h.Class("answer")),
					h.Div(h.ID("sources"), h.Class("sources")),
				),
				statsSidebar(stats),
			),
			h.Script(g.Raw(appJS)),
		},
	})
}

func examplesList() g.Node {
	items := make([]g.Node, 0, len(exampleQuestions))
	for _, q := range exampleQuestions {
		items = append(items, h.Li(h.A(h.Href("#"), h.Class("example"), g.Text(q))))
	}
	return h.Div(h.Class("examples"),
		h.H3(g.Text("Try asking")),
		h.Ul(items...),
	)
}

func statsSidebar(stats catalog.Stats) g.Node {
	row := func(label string, n int) g.Node {
		return h.Li(
			h.Span(h.Class("stat-label"), g.Text(label)),
			h.Span(h.Class("stat-value"), g.Text(fmt.Sprintf("%d", n))),
		)
	}
	return h.Aside(h.Class("stats"),
		h.H3(g.Text("Catalog")),
		h.Ul(
			row("Total datasets", stats.Total),
			row("Climate", stats.Climate),
			row("Agriculture", stats.Agriculture),
			row("Other", stats.Other),
		),
	)
}
