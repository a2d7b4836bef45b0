package table

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTable indicates the HTML document contains no <table>.
var ErrNoTable = errors.New("table: no <table> element found")

// FromHTML extracts the first <table> from an HTML document. A few platform
// resources serve HTML table exports instead of JSON or CSV.
func FromHTML(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	sel := doc.Find("table").First()
	if sel.Length() == 0 {
		return nil, ErrNoTable
	}

	t := &Table{}

	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		ths := tr.Find("th")
		if len(t.Columns) == 0 && ths.Length() > 0 {
			ths.Each(func(_ int, th *goquery.Selection) {
				t.Columns = append(t.Columns, strings.TrimSpace(th.Text()))
			})
			return
		}

		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		var row []string
		tds.Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})

		// Header row rendered with <td>.
		if len(t.Columns) == 0 {
			t.Columns = row
			return
		}
		t.Rows = append(t.Rows, row)
	})

	if len(t.Columns) == 0 {
		return nil, ErrNoTable
	}
	return t, nil
}
