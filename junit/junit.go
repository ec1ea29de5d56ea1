package junit

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Errors returned by the package, wrapped with the offending detail.
var (
	ErrMalformedXML  = errors.New("malformed xml")
	ErrSerialization = errors.New("serialization error")
)

// MergedReportName is the name attribute of the merged testsuites root.
const MergedReportName = "Mocha Tests"

// Report is a parsed (or merged) <testsuites> document.
// Totals always equal the sums over Suites.
type Report struct {
	Tests    int
	Time     decimal.Decimal
	Failures int
	Suites   []TestSuite
}

// TestSuite is a single <testsuite> element. Only the counters are parsed,
// the element itself is kept verbatim in Raw.
type TestSuite struct {
	Name     string
	Tests    int
	Time     decimal.Decimal
	Failures int

	Raw []byte
}

func newReport(suites []TestSuite) Report {
	report := Report{Suites: suites}
	for _, suite := range suites {
		report.Tests += suite.Tests
		report.Time = report.Time.Add(suite.Time)
		report.Failures += suite.Failures
	}
	return report
}
