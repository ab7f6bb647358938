package services

import (
	"github.com/fenilmodi00/tender-backend/models"
)

// DedupResult is the set of records left to insert
type DedupResult struct {
	Kept       []models.TenderRecord
	Duplicates int
}

// FilterDuplicates drops candidates whose identity tuple already exists in existing, and
// repeats of an identity within candidates. Order of the kept records is preserved.
func FilterDuplicates(candidates, existing []models.TenderRecord) DedupResult {
	seen := make(map[models.TenderIdentity]struct{}, len(existing)+len(candidates))
	for _, record := range existing {
		seen[record.Identity()] = struct{}{}
	}

	result := DedupResult{Kept: make([]models.TenderRecord, 0, len(candidates))}
	for _, record := range candidates {
		identity := record.Identity()
		if _, duplicate := seen[identity]; duplicate {
			result.Duplicates++
			continue
		}
		seen[identity] = struct{}{}
		result.Kept = append(result.Kept, record)
	}

	return result
}
