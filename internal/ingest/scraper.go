// Package ingest refreshes the pro-namespace settings records from the
// public settings source.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/camsettings-bot/internal/models"
)

// sourceColumns is the number of cells a well-formed source table row
// carries. Rows with any other cell count are skipped, not partially
// imported.
const sourceColumns = 12

// Source table cell positions. Only the first eleven cells are imported;
// the trailing cell holds the source's last-updated date.
const (
	colName = iota
	colTeam
	colShake
	colFOV
	colHeight
	colAngle
	colDistance
	colStiffness
	colSwivel
	colTransition
	colToggle
)

// tableCell is one extracted <td>: its flattened text plus the title
// attribute of the first anchor inside it, if any. The source marks team
// cells with an abbreviation as link text and the full team name as the
// anchor title.
type tableCell struct {
	text      string
	linkTitle string
}

// ParseSettingsTable extracts settings records from the source HTML. Rows
// with too few cells or an empty player name are skipped; a numeric cell
// that does not parse leaves that field absent rather than dropping the row.
func ParseSettingsTable(r io.Reader) ([]*models.PlayerSettings, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source document: %w", err)
	}

	var records []*models.PlayerSettings

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if rec := recordFromRow(n); rec != nil {
				records = append(records, rec)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			traverse(child)
		}
	}
	traverse(doc)

	return records, nil
}

// recordFromRow builds one record from a table row, or nil when the row is
// not a data row (header rows carry <th> cells and yield no <td>s).
func recordFromRow(tr *html.Node) *models.PlayerSettings {
	var cells []tableCell
	for child := tr.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "td" {
			cells = append(cells, extractCell(child))
		}
	}
	if len(cells) != sourceColumns {
		return nil
	}

	name := cells[colName].text
	if name == "" {
		return nil
	}

	rec := &models.PlayerSettings{}
	rec.SetName(name)

	fullTeam := cells[colTeam].linkTitle
	if fullTeam == "" {
		fullTeam = cells[colTeam].text
	}
	rec.SetTeam(cells[colTeam].text, fullTeam)

	rec.Shake = strings.EqualFold(cells[colShake].text, "yes")
	rec.BallToggle = strings.EqualFold(cells[colToggle].text, "toggle") ||
		strings.EqualFold(cells[colToggle].text, "yes")

	rec.FOV = parseIntCell(cells[colFOV].text)
	rec.Height = parseIntCell(cells[colHeight].text)
	rec.Distance = parseIntCell(cells[colDistance].text)
	rec.Angle = parseFloatCell(cells[colAngle].text)
	rec.Stiffness = parseFloatCell(cells[colStiffness].text)
	rec.Swivel = parseFloatCell(cells[colSwivel].text)
	rec.Transition = parseFloatCell(cells[colTransition].text)

	return rec
}

// extractCell flattens a cell's text content and captures the first anchor
// title it contains.
func extractCell(td *html.Node) tableCell {
	var cell tableCell
	var b strings.Builder

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "a" && cell.linkTitle == "" {
			for _, attr := range n.Attr {
				if attr.Key == "title" {
					cell.linkTitle = strings.TrimSpace(attr.Val)
					break
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			traverse(child)
		}
	}
	traverse(td)

	cell.text = strings.TrimSpace(b.String())
	return cell
}

func parseIntCell(text string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	return &v
}

func parseFloatCell(text string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	return &v
}
