package junit

// Merge concatenates the suites of the given reports, keeping their order, and sums
// their counters. The inputs are not modified.
func Merge(reports ...Report) Report {
	merged := Report{Suites: []TestSuite{}}
	for _, report := range reports {
		merged.Suites = append(merged.Suites, report.Suites...)
		merged.Tests += report.Tests
		merged.Time = merged.Time.Add(report.Time)
		merged.Failures += report.Failures
	}
	return merged
}
