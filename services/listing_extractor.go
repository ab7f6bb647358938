package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/tender-backend/models"
	"github.com/sirupsen/logrus"
)

// ListingRowSelectors locate the listing fields inside one result table row
type ListingRowSelectors struct {
	Row           string
	PublishedOn   string
	Category      string
	ProcedureType string
	PublicBuyer   string
	LocationRef   string
	DetailLink    string
}

// DefaultListingRowSelectors returns the row layout of the upstream result table
func DefaultListingRowSelectors() ListingRowSelectors {
	return ListingRowSelectors{
		Row:           "tbody tr",
		PublishedOn:   "td:nth-child(2) > div:nth-child(4)",
		Category:      "td:nth-child(2) > div:nth-child(3)",
		ProcedureType: ".line-info-bulle",
		PublicBuyer:   "td:nth-child(3) div div.objet-line",
		LocationRef:   "td:nth-child(4) div div div div",
		DetailLink:    "td:nth-child(6) a",
	}
}

const publicBuyerPrefix = "Acheteur public :"

// ListingExtraction is the outcome of parsing one listing page
type ListingExtraction struct {
	Rows       int
	Unparsable int
	Candidates []models.CandidateListing
}

// HTMLListingExtractor turns result table markup into candidate listings
type HTMLListingExtractor struct {
	selectors ListingRowSelectors
	logger    *logrus.Entry
}

// NewHTMLListingExtractor creates an extractor for the given row layout
func NewHTMLListingExtractor(selectors ListingRowSelectors) *HTMLListingExtractor {
	return &HTMLListingExtractor{
		selectors: selectors,
		logger: logrus.WithFields(logrus.Fields{
			"component": "HTMLListingExtractor",
		}),
	}
}

// Extract returns the rows published on the window's date, in page order. Rows whose date
// cannot be parsed are skipped.
func (extractor *HTMLListingExtractor) Extract(html string, window models.TodayWindow) (*ListingExtraction, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	result := &ListingExtraction{}
	document.Find(extractor.selectors.Row).Each(func(i int, row *goquery.Selection) {
		result.Rows++

		rawDate := strings.TrimSpace(row.Find(extractor.selectors.PublishedOn).First().Text())
		published, ok := ParsePublishedDate(rawDate, window.Date().Location())
		if !ok {
			result.Unparsable++
			return
		}
		if !window.Contains(published) {
			return
		}

		result.Candidates = append(result.Candidates, extractor.extractRow(row, published))
	})

	extractor.logger.WithFields(logrus.Fields{
		"method":     "Extract",
		"window":     window.String(),
		"rows":       result.Rows,
		"unparsable": result.Unparsable,
		"candidates": len(result.Candidates),
	}).Info("Extracted listing rows")

	return result, nil
}

func (extractor *HTMLListingExtractor) extractRow(row *goquery.Selection, published time.Time) models.CandidateListing {
	listing := models.CandidateListing{
		PublishedOn:   published.Format(models.PublishedDateLayout),
		Category:      strings.TrimSpace(row.Find(extractor.selectors.Category).First().Text()),
		ProcedureType: ownText(row.Find(extractor.selectors.ProcedureType).First()),
		PublicBuyer:   extractPublicBuyer(row.Find(extractor.selectors.PublicBuyer).Last().Text()),
	}

	// The location cell only carries the id of the element holding the text
	if id, exists := row.Find(extractor.selectors.LocationRef).First().Attr("id"); exists && id != "" {
		listing.ExecutionLocation = collapseWhitespace(findByID(row, id).Text())
	}

	if href, exists := row.Find(extractor.selectors.DetailLink).First().Attr("href"); exists {
		listing.DetailLink = strings.TrimSpace(href)
	}

	return listing
}

// findByID matches the id literally; generated ids may contain characters that are not
// valid in a CSS id selector
func findByID(scope *goquery.Selection, id string) *goquery.Selection {
	return scope.Find("[id]").FilterFunction(func(_ int, element *goquery.Selection) bool {
		value, _ := element.Attr("id")
		return value == id
	}).First()
}

// ParsePublishedDate parses a day/month/year date with one or two digit day and month
func ParsePublishedDate(raw string, loc *time.Location) (time.Time, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation("2/1/2006", fields[0], loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ownText returns the text of the selection without the text of its child elements
func ownText(selection *goquery.Selection) string {
	if selection.Length() == 0 {
		return ""
	}
	clone := selection.Clone()
	clone.Children().Remove()
	return strings.TrimSpace(clone.Text())
}

func extractPublicBuyer(raw string) string {
	text := collapseWhitespace(raw)
	text = strings.Replace(text, publicBuyerPrefix, "", 1)
	return strings.TrimSpace(text)
}

func collapseWhitespace(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
