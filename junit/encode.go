package junit

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"
)

const timePrecision = 3

// FormatSeconds renders a duration the way the merged report's time attribute holds it.
func FormatSeconds(seconds decimal.Decimal) string {
	return seconds.StringFixed(timePrecision)
}

type testSuitesXML struct {
	XMLName  xml.Name `xml:"testsuites"`
	Name     string   `xml:"name,attr"`
	Tests    int      `xml:"tests,attr"`
	Time     string   `xml:"time,attr"`
	Failures int      `xml:"failures,attr"`
	Suites   []byte   `xml:",innerxml"`
}

// Marshal encodes the report as a <testsuites> document.
// Suites are written back exactly as they were read, one per line.
func Marshal(report Report) ([]byte, error) {
	var suites bytes.Buffer
	for i, suite := range report.Suites {
		if len(bytes.TrimSpace(suite.Raw)) == 0 {
			return nil, fmt.Errorf("%w: suite #%d (%s) has no markup", ErrSerialization, i, suite.Name)
		}
		suites.WriteString("\n  ")
		suites.Write(suite.Raw)
	}
	if suites.Len() > 0 {
		suites.WriteString("\n")
	}

	raw, err := xml.Marshal(testSuitesXML{
		Name:     MergedReportName,
		Tests:    report.Tests,
		Time:     FormatSeconds(report.Time),
		Failures: report.Failures,
		Suites:   suites.Bytes(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSerialization, err)
	}

	out := append([]byte(xml.Header), raw...)
	return append(out, '\n'), nil
}
