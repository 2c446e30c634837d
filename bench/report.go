package bench

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReportLine is the finalised result of one profile.
type ReportLine struct {
	Profile       string
	LastKnownGood int // largest count that sustained the target rate
	LastTested    int // count under test when the profile converged
}

// String renders the line with the profile name padded to 16 columns.
func (l ReportLine) String() string {
	return fmt.Sprintf("%-16s%d %d", l.Profile, l.LastKnownGood, l.LastTested)
}

// Report is the ordered list of finalised profile lines for a run.
type Report struct {
	Lines []ReportLine
}

// String renders one newline-terminated line per profile.
func (r Report) String() string {
	var sb strings.Builder
	for _, line := range r.Lines {
		sb.WriteString(line.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Line returns the line for the named profile.
func (r Report) Line(profile string) (ReportLine, bool) {
	for _, line := range r.Lines {
		if line.Profile == profile {
			return line, true
		}
	}
	return ReportLine{}, false
}

// ParseReport reads report text back into lines. Blank lines are skipped.
func ParseReport(text string) (Report, error) {
	var r Report
	for i, raw := range strings.Split(text, "\n") {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return Report{}, fmt.Errorf("report line %d: expected 3 fields, got %d", i+1, len(fields))
		}
		good, err := strconv.Atoi(fields[1])
		if err != nil {
			return Report{}, fmt.Errorf("report line %d: last known good: %w", i+1, err)
		}
		tested, err := strconv.Atoi(fields[2])
		if err != nil {
			return Report{}, fmt.Errorf("report line %d: last tested: %w", i+1, err)
		}
		r.Lines = append(r.Lines, ReportLine{Profile: fields[0], LastKnownGood: good, LastTested: tested})
	}
	return r, nil
}

// WriteReportFile overwrites path with the report text.
func WriteReportFile(path string, r Report) error {
	if err := os.WriteFile(path, []byte(r.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
