package services

import (
	"context"
	"errors"

	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/sirupsen/logrus"
)

// SearchFormSelectors are the CSS selectors of the advanced search form and result page
type SearchFormSelectors struct {
	ProcedureType         string
	PublishedFrom         string
	PublishedTo           string
	ComputedPublishedTo   string
	ComputedPublishedFrom string
	SearchButton          string
	PageSize              string
}

// DefaultSearchFormSelectors returns the element ids used by the upstream portal
func DefaultSearchFormSelectors() SearchFormSelectors {
	return SearchFormSelectors{
		ProcedureType:         "#ctl0_CONTENU_PAGE_AdvancedSearch_procedureType",
		PublishedFrom:         "#ctl0_CONTENU_PAGE_AdvancedSearch_dateMiseEnLigneStart",
		PublishedTo:           "#ctl0_CONTENU_PAGE_AdvancedSearch_dateMiseEnLigneEnd",
		ComputedPublishedTo:   "#ctl0_CONTENU_PAGE_AdvancedSearch_dateMiseEnLigneCalculeEnd",
		ComputedPublishedFrom: "#ctl0_CONTENU_PAGE_AdvancedSearch_dateMiseEnLigneCalculeStart",
		SearchButton:          "#ctl0_CONTENU_PAGE_AdvancedSearch_lancerRecherche",
		PageSize:              "#ctl0_CONTENU_PAGE_resultSearch_listePageSizeTop",
	}
}

// ListingNavigator configures the search form and returns the result page markup
type ListingNavigator struct {
	newSession    SessionFactory
	selectors     SearchFormSelectors
	searchURL     string
	procedureType string
	pageSize      string
	logger        *logrus.Entry
}

// NewListingNavigator creates a navigator for the configured search page
func NewListingNavigator(newSession SessionFactory, config shared.BrowserConfig, selectors SearchFormSelectors) *ListingNavigator {
	return &ListingNavigator{
		newSession:    newSession,
		selectors:     selectors,
		searchURL:     config.SearchURL,
		procedureType: config.ProcedureType,
		pageSize:      config.PageSize,
		logger: logrus.WithFields(logrus.Fields{
			"component": "ListingNavigator",
		}),
	}
}

// FetchListingPage drives one browser session through the search and returns the rendered
// result page. It returns shared.ErrNoData when the search produced no result table.
// Any other failure is a session error. The session is closed exactly once on every path.
func (n *ListingNavigator) FetchListingPage(ctx context.Context) (html string, err error) {
	logger := n.logger.WithField("method", "FetchListingPage")

	session, err := n.newSession(ctx)
	if err != nil {
		return "", shared.NewSessionError("acquire", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close navigation session")
		}
	}()

	steps := []struct {
		operation string
		run       func() error
	}{
		{"open", func() error { return session.Open(ctx, n.searchURL) }},
		{"select procedure type", func() error {
			return session.SelectOption(ctx, n.selectors.ProcedureType, n.procedureType)
		}},
		{"clear published from", func() error { return session.ClearValue(ctx, n.selectors.PublishedFrom) }},
		{"clear published to", func() error { return session.ClearValue(ctx, n.selectors.PublishedTo) }},
		{"copy computed date", func() error {
			return session.CopyValue(ctx, n.selectors.ComputedPublishedTo, n.selectors.ComputedPublishedFrom)
		}},
		{"search", func() error { return session.SubmitAndWait(ctx, n.selectors.SearchButton) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return "", shared.NewSessionError(step.operation, err)
		}
		logger.WithField("step", step.operation).Debug("Search step completed")
	}

	hasResults, err := session.HasElement(ctx, n.selectors.PageSize)
	if err != nil {
		return "", shared.NewSessionError("check results", err)
	}
	if !hasResults {
		logger.Info("No data available to scrape")
		return "", shared.ErrNoData
	}

	if err := session.SelectOptionAndWait(ctx, n.selectors.PageSize, n.pageSize); err != nil {
		return "", shared.NewSessionError("select page size", err)
	}

	html, err = session.RenderedHTML(ctx)
	if err != nil {
		return "", shared.NewSessionError("read page", err)
	}

	logger.WithField("html_bytes", len(html)).Info("Fetched listing page")
	return html, nil
}

// IsNoData reports whether err is the no-data signal
func IsNoData(err error) bool {
	return errors.Is(err, shared.ErrNoData)
}
