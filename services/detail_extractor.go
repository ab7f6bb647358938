package services

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/tender-backend/models"
)

// DetailPageSelectors locate the tender fields on a detail page
type DetailPageSelectors struct {
	SubmissionDeadline string
	Reference          string
	ObjectDescription  string
	DocumentsLink      string
}

// DefaultDetailPageSelectors returns the element ids used by the upstream detail page
func DefaultDetailPageSelectors() DetailPageSelectors {
	return DetailPageSelectors{
		SubmissionDeadline: "#ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_dateHeureLimiteRemisePlis",
		Reference:          "#ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_reference",
		ObjectDescription:  "#ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_objet",
		DocumentsLink:      "#ctl0_CONTENU_PAGE_panelOnglet1 > div.content > div:nth-child(1) > div.content > div:nth-child(2) > div.content > div.bloc-docs-link.bloc-250 > ul > li:nth-child(1) > a",
	}
}

// DetailExtractor parses detail page markup
type DetailExtractor struct {
	selectors DetailPageSelectors
}

func NewDetailExtractor(selectors DetailPageSelectors) *DetailExtractor {
	return &DetailExtractor{selectors: selectors}
}

// Extract reads the detail fields of the page fetched from pageURL. Missing or empty
// fields are set to models.FieldNotFound. DownloadLink is the page URL itself.
func (extractor *DetailExtractor) Extract(body []byte, pageURL string) (models.DetailFields, error) {
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.DetailFields{}, fmt.Errorf("failed to parse detail page: %w", err)
	}

	fields := models.DetailFields{
		DownloadLink:       pageURL,
		SubmissionDeadline: textOrNotFound(document.Find(extractor.selectors.SubmissionDeadline)),
		Reference:          textOrNotFound(document.Find(extractor.selectors.Reference)),
		ObjectDescription:  textOrNotFound(document.Find(extractor.selectors.ObjectDescription)),
		DocumentsLink:      models.FieldNotFound,
		Verified:           false,
	}

	if href, exists := document.Find(extractor.selectors.DocumentsLink).First().Attr("href"); exists && strings.TrimSpace(href) != "" {
		fields.DocumentsLink = resolveAgainst(pageURL, strings.TrimSpace(href))
	}

	return fields, nil
}

func textOrNotFound(selection *goquery.Selection) string {
	text := strings.TrimSpace(selection.First().Text())
	if text == "" {
		return models.FieldNotFound
	}
	return text
}

// resolveAgainst resolves ref relative to base, returning ref unchanged when either does not parse
func resolveAgainst(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
