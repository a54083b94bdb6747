package progress

// Aggregate computes a single completion percentage from a set of
// sub-task records. Sub-tasks are assumed roughly comparable in cost,
// so the result is the unweighted mean of the usable per-record
// percentages, rounded to 2 decimal places.
//
// A record contributes its derived percentage when present, or one
// computed from current/total when the total is known and nonzero;
// otherwise it is skipped. When no record yields a usable value the
// second return is false and callers must display a fallback, not zero.
func Aggregate(details map[string]Record) (float64, bool) {
	if len(details) == 0 {
		return 0, false
	}

	var sum float64
	var count int
	for _, rec := range details {
		switch {
		case rec.Percent != nil:
			sum += *rec.Percent
			count++
		case rec.Total != nil && *rec.Total > 0:
			sum += round2(float64(rec.Current) / float64(*rec.Total) * 100)
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return round2(sum / float64(count)), true
}
