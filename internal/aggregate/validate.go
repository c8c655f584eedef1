package aggregate

import (
	"fmt"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/sources"
)

// BuildValidation derives per-source and aggregate completeness from the
// fetch results.
//
// A source is complete when it succeeded and fetched at least as many records
// as it reported available. A source that failed, or that returned records
// without reporting a total, is incomplete for its own accounting, but only
// failures and known shortfalls force the aggregate flag false: an unknown
// total yields a warning without claiming incompleteness the data cannot
// prove. totalAfterFiltering counts the records that survived normalization,
// dedup, and relevance filtering.
func BuildValidation(results []sources.FetchResult, totalAfterFiltering int) domain.ValidationInfo {
	info := domain.ValidationInfo{
		IsComplete:          true,
		Sources:             make([]domain.SourceValidation, 0, len(results)),
		TotalAfterFiltering: totalAfterFiltering,
	}

	for _, res := range results {
		sv := domain.SourceValidation{
			Source:       res.Source,
			FetchedCount: len(res.Records),
		}
		info.TotalFetched += sv.FetchedCount

		switch {
		case res.Err != nil:
			info.IsComplete = false
			info.Warnings = append(info.Warnings,
				fmt.Sprintf("%s unavailable: %v; results may be incomplete", res.Name, res.Err))
			if len(res.Records) > 0 {
				info.Warnings = append(info.Warnings,
					fmt.Sprintf("%s returned %d records before failing", res.Name, len(res.Records)))
			}

		case res.TotalCount != nil:
			total := *res.TotalCount
			sv.TotalAvailable = &total
			sv.IsComplete = sv.FetchedCount >= total
			if total > 0 {
				pct := float64(sv.FetchedCount) / float64(total) * 100
				sv.CompletenessPercentage = &pct
			} else {
				pct := 100.0
				sv.CompletenessPercentage = &pct
			}
			if !sv.IsComplete {
				info.IsComplete = false
				info.Warnings = append(info.Warnings,
					fmt.Sprintf("%s returned %d of %d available records", res.Name, sv.FetchedCount, total))
			}

		case sv.FetchedCount > 0:
			// Records arrived but the source never reported a total.
			info.Warnings = append(info.Warnings,
				fmt.Sprintf("%s did not report a total; completeness unknown", res.Name))

		default:
			// No records and no total: vacuously complete.
			sv.IsComplete = true
		}

		info.Sources = append(info.Sources, sv)
	}

	return info
}
