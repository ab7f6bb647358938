package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/tender-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `<html><body>
<table class="table-results">
<tbody>
<tr>
	<td>1</td>
	<td>
		<div>ref</div>
		<div>status</div>
		<div>Travaux</div>
		<div>19/10/2026 <span>10:00</span></div>
	</td>
	<td>
		<div>
			<div class="objet-line">Objet : Bridge repair</div>
			<div class="objet-line"><strong>Acheteur public :</strong>
				Commune   de Fes
			</div>
		</div>
	</td>
	<td><div><div><div><div id="ctl0_location_1">  Fes
		(Maroc) </div></div></div></div></td>
	<td><div class="line-info-bulle">AOO<div class="info-bulle">Appel d'offres ouvert</div></div></td>
	<td><a href="/index.php?page=entreprise.EntrepriseDetailConsultation&amp;refConsultation=42">Voir</a></td>
</tr>
<tr>
	<td>2</td>
	<td><div>ref</div><div>status</div><div>Services</div><div>18/10/2026</div></td>
	<td><div><div class="objet-line"><strong>Acheteur public :</strong> Region</div></div></td>
	<td></td>
	<td><div class="line-info-bulle">AOR</div></td>
	<td><a href="/detail/43">Voir</a></td>
</tr>
<tr>
	<td>3</td>
	<td><div>ref</div><div>status</div><div>Services</div><div>pending</div></td>
	<td></td>
	<td></td>
	<td></td>
	<td></td>
</tr>
<tr>
	<td>4</td>
	<td><div>ref</div><div>status</div><div>Fournitures</div><div>19/10/2026</div></td>
	<td><div><div class="objet-line">Acheteur public : Ministere</div></div></td>
	<td><div><div><div><div>Rabat</div></div></div></div></td>
	<td><div class="line-info-bulle">AOO</div></td>
	<td></td>
</tr>
</tbody>
</table>
</body></html>`

func fixtureWindow() models.TodayWindow {
	return models.NewTodayWindow(time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), time.UTC)
}

func TestHTMLListingExtractorKeepsTodaysRows(t *testing.T) {
	extractor := NewHTMLListingExtractor(DefaultListingRowSelectors())

	result, err := extractor.Extract(listingFixture, fixtureWindow())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 1, result.Unparsable)
	require.Len(t, result.Candidates, 2)

	first := result.Candidates[0]
	assert.Equal(t, "19/10/2026", first.PublishedOn)
	assert.Equal(t, "Travaux", first.Category)
	assert.Equal(t, "AOO", first.ProcedureType)
	assert.Equal(t, "Commune de Fes", first.PublicBuyer)
	assert.Equal(t, "Fes (Maroc)", first.ExecutionLocation)
	assert.Equal(t, "/index.php?page=entreprise.EntrepriseDetailConsultation&refConsultation=42", first.DetailLink)

	second := result.Candidates[1]
	assert.Equal(t, "Fournitures", second.Category)
	assert.Equal(t, "Ministere", second.PublicBuyer)
	assert.Empty(t, second.ExecutionLocation)
	assert.False(t, second.HasDetailLink())
}

func TestHTMLListingExtractorEmptyTable(t *testing.T) {
	extractor := NewHTMLListingExtractor(DefaultListingRowSelectors())

	result, err := extractor.Extract("<html><body><p>Aucun resultat</p></body></html>", fixtureWindow())
	require.NoError(t, err)

	assert.Zero(t, result.Rows)
	assert.Empty(t, result.Candidates)
}

func TestParsePublishedDate(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
		ok       bool
	}{
		{"19/10/2026", time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), true},
		{"5/3/2026", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), true},
		{"05/03/2026 10:30", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), true},
		{"  19/10/2026\n", time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"2026-10-19", time.Time{}, false},
		{"31/02/2026", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			parsed, ok := ParsePublishedDate(tt.raw, time.UTC)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.expected.Equal(parsed))
			}
		})
	}
}

func TestExtractPublicBuyer(t *testing.T) {
	assert.Equal(t, "Commune de Fes", extractPublicBuyer("Acheteur public :\n  Commune de   Fes "))
	assert.Equal(t, "Region", extractPublicBuyer("Region"))
	assert.Empty(t, extractPublicBuyer(""))
}

func TestHTMLListingExtractorLocationWithGeneratedID(t *testing.T) {
	extractor := NewHTMLListingExtractor(DefaultListingRowSelectors())

	for _, id := range []string{"lieu:ctl1.exec", "1_location", "ctl0_lieu_3"} {
		t.Run(id, func(t *testing.T) {
			page := `<table><tbody><tr>
	<td>1</td>
	<td><div>ref</div><div>status</div><div>Travaux</div><div>19/10/2026</div></td>
	<td></td>
	<td><div><div><div><div id="` + id + `"> Meknes </div></div></div></div></td>
	<td></td>
	<td></td>
</tr></tbody></table>`

			result, err := extractor.Extract(page, fixtureWindow())
			require.NoError(t, err)
			require.Len(t, result.Candidates, 1)
			assert.Equal(t, "Meknes", result.Candidates[0].ExecutionLocation)
		})
	}
}
