package junit

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	testSuitesElement = "testsuites"
	testSuiteElement  = "testsuite"
)

var (
	errTranscodeRequired = errors.New("transcode required")

	utf8BOM = []byte("\xEF\xBB\xBF")
)

type charsetReaderFunc func(charset string, input io.Reader) (io.Reader, error)

// Parse parses the content of a JUnit XML report.
//
// A document whose root is not <testsuites>, or which has no <testsuite> children,
// is a valid empty report. Documents which are not well-formed return ErrMalformedXML.
func Parse(data []byte) (Report, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var declaredCharset string
	report, err := decode(data, func(charset string, _ io.Reader) (io.Reader, error) {
		declaredCharset = charset
		return nil, errTranscodeRequired
	})
	if err == nil {
		return report, nil
	}
	if declaredCharset == "" {
		return Report{}, fmt.Errorf("%w: %s", ErrMalformedXML, err)
	}

	utf8Data, err := toUTF8(data, declaredCharset)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrMalformedXML, err)
	}

	// The content is UTF-8 now, the declaration still names the original charset.
	report, err = decode(utf8Data, func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrMalformedXML, err)
	}
	return report, nil
}

func decode(data []byte, charsetReader charsetReaderFunc) (Report, error) {
	// bytes.Reader is an io.ByteReader, so the decoder's input offsets index data directly.
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader

	var suites []TestSuite
	hasRoot := false
	isReport := false
	depth := 0

	for {
		start := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Report{}, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if depth == 0 {
				if hasRoot {
					return Report{}, fmt.Errorf("unexpected second root element <%s>", t.Name.Local)
				}
				hasRoot = true
				isReport = t.Name.Local == testSuitesElement
			}

			if depth == 1 && isReport && t.Name.Local == testSuiteElement {
				if err := decoder.Skip(); err != nil {
					return Report{}, err
				}
				suites = append(suites, newTestSuite(t.Attr, data[start:decoder.InputOffset()]))
				continue
			}

			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return Report{}, errors.New("character data outside of the root element")
			}
		}
	}

	if !hasRoot {
		return Report{}, errors.New("no root element")
	}

	return newReport(suites), nil
}

func newTestSuite(attrs []xml.Attr, raw []byte) TestSuite {
	suite := TestSuite{Raw: raw}
	for _, attr := range attrs {
		if attr.Name.Space != "" {
			continue
		}

		switch attr.Name.Local {
		case "name":
			suite.Name = attr.Value
		case "tests":
			suite.Tests = parseCount(attr.Value)
		case "time":
			suite.Time = parseSeconds(attr.Value)
		case "failures":
			suite.Failures = parseCount(attr.Value)
		}
	}
	return suite
}

// parseCount returns 0 for values which are not numbers or do not fit an int,
// fractions are truncated.
func parseCount(value string) int {
	value = strings.TrimSpace(value)
	count, err := strconv.Atoi(value)
	if err == nil {
		return count
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	truncated := d.Truncate(0)
	if truncated.LessThan(decimal.NewFromInt(math.MinInt)) || truncated.GreaterThan(decimal.NewFromInt(math.MaxInt)) {
		return 0
	}
	return int(truncated.IntPart())
}

func parseSeconds(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toUTF8(data []byte, charset string) ([]byte, error) {
	encoding, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset (%s): %w", charset, err)
	}
	if encoding == nil {
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}

	return encoding.NewDecoder().Bytes(data)
}
