package services

import (
	"testing"

	"github.com/fenilmodi00/tender-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailPageURL = "https://tenders.example/index.php?page=entreprise.EntrepriseDetailConsultation&refConsultation=42"

const detailFixture = `<html><body>
<span id="ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_dateHeureLimiteRemisePlis"> 30/10/2026 10:00 </span>
<span id="ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_reference">REF-42</span>
<span id="ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_objet">Bridge repair</span>
<div id="ctl0_CONTENU_PAGE_panelOnglet1">
	<div class="content">
		<div>
			<div class="content">
				<div>Pieces</div>
				<div>
					<div class="content">
						<div class="bloc-docs-link bloc-250">
							<ul>
								<li><a href="/docs/42.zip">Dossier de consultation</a></li>
								<li><a href="/docs/42-annex.zip">Annexe</a></li>
							</ul>
						</div>
					</div>
				</div>
			</div>
		</div>
	</div>
</div>
</body></html>`

func TestDetailExtractorReadsFields(t *testing.T) {
	extractor := NewDetailExtractor(DefaultDetailPageSelectors())

	fields, err := extractor.Extract([]byte(detailFixture), detailPageURL)
	require.NoError(t, err)

	assert.Equal(t, detailPageURL, fields.DownloadLink)
	assert.Equal(t, "30/10/2026 10:00", fields.SubmissionDeadline)
	assert.Equal(t, "REF-42", fields.Reference)
	assert.Equal(t, "Bridge repair", fields.ObjectDescription)
	assert.Equal(t, "https://tenders.example/docs/42.zip", fields.DocumentsLink)
	assert.False(t, fields.Verified)
}

func TestDetailExtractorMissingFields(t *testing.T) {
	extractor := NewDetailExtractor(DefaultDetailPageSelectors())

	page := `<html><body>
<span id="ctl0_CONTENU_PAGE_idEntrepriseConsultationSummary_reference">   </span>
<p>Consultation introuvable</p>
</body></html>`

	fields, err := extractor.Extract([]byte(page), detailPageURL)
	require.NoError(t, err)

	assert.Equal(t, detailPageURL, fields.DownloadLink)
	assert.Equal(t, models.FieldNotFound, fields.SubmissionDeadline)
	assert.Equal(t, models.FieldNotFound, fields.Reference)
	assert.Equal(t, models.FieldNotFound, fields.ObjectDescription)
	assert.Equal(t, models.FieldNotFound, fields.DocumentsLink)
}

func TestResolveAgainst(t *testing.T) {
	assert.Equal(t, "https://tenders.example/docs/1.zip", resolveAgainst("https://tenders.example/a/b?x=1", "/docs/1.zip"))
	assert.Equal(t, "https://tenders.example/a/docs/1.zip", resolveAgainst("https://tenders.example/a/b", "docs/1.zip"))
	assert.Equal(t, "https://cdn.example/1.zip", resolveAgainst("https://tenders.example/", "https://cdn.example/1.zip"))
}
