// Command validate performs end-to-end integrity checks across the body
// trend data files: the scale CSV export, the normalized records JSON, and the
// daily samples JSON the trend page reads. It verifies row counts, field
// presence, morning selection, carriage-return freedom, and the fields the
// page depends on.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/BODY.csv \
//	  -samples-json data/mock/BODY_MORNING_DATA.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the scale CSV export")
	recordsJSON := flag.String("records-json", "", "path to the normalized records JSON (recomputed from -csv when empty)")
	samplesJSON := flag.String("samples-json", "", "path to the daily samples JSON")
	flag.Parse()

	if *csvPath == "" || *samplesJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *recordsJSON, *samplesJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, recordsPath, samplesPath string) int {
	fmt.Println("=== Body Trend Data Integrity Validation ===")
	fmt.Println()

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}
	ingested, err := domain.ParseCSV(string(raw), domain.IngestOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse CSV: %v\n", err)
		return 1
	}

	records := domain.SanitizeRecords(ingested.Records)
	if recordsPath != "" {
		if records, err = jsonfile.ReadRecords(recordsPath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load records JSON: %v\n", err)
			return 1
		}
	}

	samples, err := jsonfile.ReadRecords(samplesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load samples JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIngestParity(string(raw), records),
		validateSampleIntegrity(records, samples),
		validateCRFreedom(records, samples),
		validatePageContract(samples),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := color.GreenString("PASS")
		if !p.passed() {
			status = color.RedString("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV rows, %d normalized, %d daily samples\n",
		dataRows(string(raw)), len(records), len(samples))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// dataRows counts non-empty lines after the header.
func dataRows(raw string) int {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	n := 0
	for _, l := range lines[min(1, len(lines)):] {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

// ── Phase 1: CSV → records ──

func validateIngestParity(raw string, records []domain.Record) *phase {
	p := &phase{name: "Phase 1: Ingest parity"}

	if want := dataRows(raw); len(records) != want {
		p.errorf("record count: got %d, want %d CSV rows", len(records), want)
	}

	headerLine, _, _ := strings.Cut(raw, "\n")
	var headers []string
	for _, h := range strings.Split(headerLine, ",") {
		headers = append(headers, domain.Sanitize(h).(string))
	}

	for i, r := range records {
		if diff := cmp.Diff(headers, r.Keys()); diff != "" {
			p.errorf("record %d: keys differ from header (-want +got):\n%s", i, diff)
		}
		ts, ok := r.Time()
		if !ok {
			p.errorf("record %d: time is not a string", i)
			continue
		}
		if _, err := domain.ParseCanonical(ts, domain.ChinaStandardTime); err != nil {
			p.errorf("record %d: time %q is not canonical UTC+8", i, ts)
		}
	}
	return p
}

// ── Phase 2: records → samples ──

func validateSampleIntegrity(records, samples []domain.Record) *phase {
	p := &phase{name: "Phase 2: Morning sample integrity"}

	expected := domain.Sample(records)
	want, err := jsonfile.Encode(domain.SanitizeRecords(expected))
	if err != nil {
		p.errorf("encode expected samples: %v", err)
		return p
	}
	got, err := jsonfile.Encode(samples)
	if err != nil {
		p.errorf("encode samples: %v", err)
		return p
	}
	if diff := cmp.Diff(strings.Split(string(want), "\n"), strings.Split(string(got), "\n")); diff != "" {
		p.errorf("samples differ from a fresh selection (-want +got):\n%s", diff)
	}

	seen := make(map[string]bool, len(samples))
	prev := ""
	for i, s := range samples {
		ts, _ := s.Time()
		if len(ts) < len("2006-01-02 15") {
			p.errorf("sample %d: unusable time %q", i, ts)
			continue
		}
		date := ts[:10]
		if seen[date] {
			p.errorf("sample %d: second sample for %s", i, date)
		}
		seen[date] = true
		if ts < prev {
			p.errorf("sample %d: %s sorts before %s", i, ts, prev)
		}
		prev = ts
		if h := ts[11:13]; h < "07" || h > "08" {
			p.errorf("sample %d: %s is outside the morning window", i, ts)
		}
	}
	return p
}

// ── Phase 3: carriage returns ──

func validateCRFreedom(records, samples []domain.Record) *phase {
	p := &phase{name: "Phase 3: Carriage-return freedom"}
	for i, r := range records {
		if domain.ContainsCR(r) {
			p.errorf("record %d contains a carriage return", i)
		}
	}
	for i, s := range samples {
		if domain.ContainsCR(s) {
			p.errorf("sample %d contains a carriage return", i)
		}
	}
	return p
}

// ── Phase 4: fields the trend page reads ──

func validatePageContract(samples []domain.Record) *phase {
	p := &phase{name: "Phase 4: Trend page contract"}
	for i, s := range samples {
		if _, ok := s.Time(); !ok {
			p.errorf("sample %d: missing time", i)
		}
		for _, key := range []string{domain.FieldWeight, domain.FieldBMI} {
			v, ok := s.Get(key)
			if !ok {
				p.errorf("sample %d: missing %s", i, key)
				continue
			}
			if v == nil {
				continue
			}
			if math.IsNaN(s.Number(key)) {
				p.errorf("sample %d: %s is %v, want a number or null", i, key, v)
			}
		}
	}
	return p
}
