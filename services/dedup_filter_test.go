package services

import (
	"testing"

	"github.com/fenilmodi00/tender-backend/models"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterDuplicatesAgainstStore(t *testing.T) {
	stored := tenderRecord("19/10/2026", "A-1")
	stored.ID = uuid.New()
	stored.DocumentsLink = "https://tenders.example/docs/old.zip"

	fresh := tenderRecord("19/10/2026", "A-1")
	other := tenderRecord("19/10/2026", "A-2")

	result := FilterDuplicates([]models.TenderRecord{fresh, other}, []models.TenderRecord{stored})

	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Kept, 1)
	assert.Equal(t, "A-2", result.Kept[0].Reference)
}

func TestFilterDuplicatesWithinBatch(t *testing.T) {
	a := tenderRecord("19/10/2026", "A-1")
	b := tenderRecord("19/10/2026", "A-2")

	result := FilterDuplicates([]models.TenderRecord{a, b, a, a}, nil)

	assert.Equal(t, 2, result.Duplicates)
	require.Len(t, result.Kept, 2)
	assert.Equal(t, "A-1", result.Kept[0].Reference)
	assert.Equal(t, "A-2", result.Kept[1].Reference)
}

func TestFilterDuplicatesEmpty(t *testing.T) {
	result := FilterDuplicates(nil, []models.TenderRecord{tenderRecord("19/10/2026", "A-1")})

	assert.Empty(t, result.Kept)
	assert.Zero(t, result.Duplicates)
}

func TestFilterDuplicatesProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	references := gen.IntRange(0, 5).Map(func(i int) models.TenderRecord {
		return tenderRecord("19/10/2026", string(rune('A'+i)))
	})

	properties.Property("kept records are unique and absent from the store", prop.ForAll(
		func(candidates, existing []models.TenderRecord) bool {
			result := FilterDuplicates(candidates, existing)
			if len(result.Kept)+result.Duplicates != len(candidates) {
				return false
			}

			seen := make(map[models.TenderIdentity]bool)
			for _, record := range existing {
				seen[record.Identity()] = true
			}
			for _, record := range result.Kept {
				if seen[record.Identity()] {
					return false
				}
				seen[record.Identity()] = true
			}
			return true
		},
		gen.SliceOf(references),
		gen.SliceOf(references),
	))

	properties.Property("filtering twice keeps nothing new", prop.ForAll(
		func(candidates []models.TenderRecord) bool {
			first := FilterDuplicates(candidates, nil)
			second := FilterDuplicates(candidates, first.Kept)
			return len(second.Kept) == 0 && second.Duplicates == len(candidates)
		},
		gen.SliceOf(references),
	))

	properties.TestingRun(t)
}
