package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSession records the operations it receives and fails the one named in failOn
type recordingSession struct {
	calls      []string
	failOn     string
	hasResults bool
	html       string
	closed     int
}

func (s *recordingSession) step(name string) error {
	s.calls = append(s.calls, name)
	if s.failOn == name {
		return errors.New(name + " timed out")
	}
	return nil
}

func (s *recordingSession) Open(ctx context.Context, url string) error {
	return s.step("open " + url)
}

func (s *recordingSession) SelectOption(ctx context.Context, selector, value string) error {
	return s.step("select " + selector + "=" + value)
}

func (s *recordingSession) SelectOptionAndWait(ctx context.Context, selector, value string) error {
	return s.step("select+wait " + selector + "=" + value)
}

func (s *recordingSession) ClearValue(ctx context.Context, selector string) error {
	return s.step("clear " + selector)
}

func (s *recordingSession) CopyValue(ctx context.Context, fromSelector, toSelector string) error {
	return s.step("copy " + fromSelector + "->" + toSelector)
}

func (s *recordingSession) SubmitAndWait(ctx context.Context, selector string) error {
	return s.step("submit " + selector)
}

func (s *recordingSession) HasElement(ctx context.Context, selector string) (bool, error) {
	if err := s.step("has " + selector); err != nil {
		return false, err
	}
	return s.hasResults, nil
}

func (s *recordingSession) RenderedHTML(ctx context.Context) (string, error) {
	if err := s.step("html"); err != nil {
		return "", err
	}
	return s.html, nil
}

func (s *recordingSession) Close() error {
	s.closed++
	return nil
}

func testSelectors() SearchFormSelectors {
	return SearchFormSelectors{
		ProcedureType:         "#procedure",
		PublishedFrom:         "#from",
		PublishedTo:           "#to",
		ComputedPublishedTo:   "#computedTo",
		ComputedPublishedFrom: "#computedFrom",
		SearchButton:          "#search",
		PageSize:              "#pageSize",
	}
}

func testNavigator(session *recordingSession) *ListingNavigator {
	config := shared.NewDefaultUnifiedConfiguration().Browser
	config.SearchURL = "https://tenders.example/search"

	factory := func(ctx context.Context) (NavigationSession, error) { return session, nil }
	return NewListingNavigator(factory, config, testSelectors())
}

var expectedNavigationSteps = []string{
	"open https://tenders.example/search",
	"select #procedure=1",
	"clear #from",
	"clear #to",
	"copy #computedTo->#computedFrom",
	"submit #search",
	"has #pageSize",
	"select+wait #pageSize=50",
	"html",
}

func TestListingNavigatorFetchesResultPage(t *testing.T) {
	session := &recordingSession{hasResults: true, html: "<table></table>"}

	html, err := testNavigator(session).FetchListingPage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "<table></table>", html)
	assert.Equal(t, expectedNavigationSteps, session.calls)
	assert.Equal(t, 1, session.closed)
}

func TestListingNavigatorNoData(t *testing.T) {
	session := &recordingSession{hasResults: false}

	_, err := testNavigator(session).FetchListingPage(context.Background())

	assert.ErrorIs(t, err, shared.ErrNoData)
	assert.True(t, IsNoData(err))
	assert.Equal(t, expectedNavigationSteps[:7], session.calls)
	assert.Equal(t, 1, session.closed)
}

func TestListingNavigatorClosesSessionOnEveryFailure(t *testing.T) {
	for i, step := range expectedNavigationSteps {
		t.Run(step, func(t *testing.T) {
			session := &recordingSession{failOn: step, hasResults: true}

			_, err := testNavigator(session).FetchListingPage(context.Background())

			require.Error(t, err)
			assert.False(t, IsNoData(err))
			assert.True(t, shared.IsCategory(err, shared.ErrorCategorySession))
			assert.Equal(t, expectedNavigationSteps[:i+1], session.calls)
			assert.Equal(t, 1, session.closed)
		})
	}
}

func TestListingNavigatorAcquireFailure(t *testing.T) {
	factory := func(ctx context.Context) (NavigationSession, error) {
		return nil, errors.New("chrome not found")
	}
	navigator := NewListingNavigator(factory, shared.NewDefaultUnifiedConfiguration().Browser, testSelectors())

	_, err := navigator.FetchListingPage(context.Background())

	require.Error(t, err)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategorySession))
	assert.Contains(t, err.Error(), "chrome not found")
}
