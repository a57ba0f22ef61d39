package run

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"
)

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     float64          `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Content string `xml:",chardata"`
}

// WriteJUnit writes the report as JUnit XML, one testsuite per file and
// one testcase per entry.
func (r *Report) WriteJUnit(path string) error {
	suites := junitTestSuites{Time: r.Duration.Seconds()}
	for i := range r.Files {
		file := &r.Files[i]
		suite := junitTestSuite{
			Name:      file.File,
			Time:      file.Duration.Seconds(),
			Timestamp: r.StartedAt.Format(time.RFC3339),
		}
		for j := range file.Entries {
			entry := &file.Entries[j]
			testCase := junitTestCase{
				Name:      fmt.Sprintf("entry %d: %s %s", entry.Index, entry.Method, entry.URL),
				ClassName: file.File,
				Time:      entry.Duration.Seconds(),
			}
			if !entry.Passed() {
				testCase.Failure = &junitFailure{Message: entryFailureMessage(entry)}
				suite.Failures++
			}
			suite.Tests++
			suite.Cases = append(suite.Cases, testCase)
		}
		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Suites = append(suites.Suites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize junit report: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write junit report %s: %w", path, err)
	}
	return nil
}

func entryFailureMessage(entry *EntryResult) string {
	if entry.Error != "" {
		return entry.Error
	}
	for _, assert := range entry.Asserts {
		if !assert.Passed {
			return assert.Message
		}
	}
	return "failed"
}
