// Command genmock builds the body-composition fixtures used by the pipeline
// tests. It can synthesize a scale export with a seeded generator, then runs
// the real domain package over the CSV so the expected samples match what the
// pipeline produces.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/BODY.csv \
//	  -samples-out data/mock/BODY_MORNING_DATA.json
//
//	go run ./cmd/genmock -days 30 -seed 7 \
//	  -csv /tmp/BODY.csv \
//	  -samples-out /tmp/BODY_MORNING_DATA.json
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Last day of generated data, in scale-local time.
var endDate = time.Date(2024, time.May, 31, 21, 0, 0, 0, domain.ChinaStandardTime)

var header = []string{
	"time", "weight", "height", "bmi", "fatRate", "bodyWaterRate",
	"boneMass", "metabolism", "muscleRate", "visceralFat",
}

const heightCM = 175.5

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "scale CSV export to read (written first when -days is set)")
	recordsOut := flag.String("records-out", "", "optional output path for the normalized records fixture")
	samplesOut := flag.String("samples-out", "", "output path for the daily samples fixture")
	days := flag.Int("days", 0, "synthesize this many days of readings into -csv")
	seed := flag.Uint64("seed", 1, "generator seed for -days")
	flag.Parse()

	if *csvPath == "" || *samplesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -samples-out")
	}

	// Fixed clock so generated dates are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(endDate))
	defer domain.SetClock(nil)

	if *days > 0 {
		raw := synthesize(*days, rand.New(rand.NewPCG(*seed, *seed)))
		if err := jsonfile.WriteFile(*csvPath, []byte(raw)); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		log.Printf("wrote %d days to %s", *days, *csvPath)
	}

	data, err := os.ReadFile(*csvPath)
	if err != nil {
		return err
	}
	ingested, err := domain.ParseCSV(string(data), domain.IngestOptions{Location: domain.ChinaStandardTime})
	if err != nil {
		return fmt.Errorf("parse %s: %w", *csvPath, err)
	}
	records := domain.SanitizeRecords(ingested.Records)
	log.Printf("ingested %d records", len(records))

	if *recordsOut != "" {
		if err := jsonfile.WriteRecords(*recordsOut, records); err != nil {
			return fmt.Errorf("writing records fixture: %w", err)
		}
		log.Printf("wrote records fixture: %s", *recordsOut)
	}

	sampled := domain.SampleWith(records, domain.DefaultSampleOptions())
	if err := jsonfile.WriteRecords(*samplesOut, domain.SanitizeRecords(sampled.Samples)); err != nil {
		return fmt.Errorf("writing samples fixture: %w", err)
	}
	log.Printf("wrote samples fixture: %s", *samplesOut)

	printStats(ingested, sampled)
	return nil
}

// synthesize returns a CRLF export with one to four readings per day and a
// slow downward weight trend. Roughly one reading in forty has no weight.
func synthesize(days int, rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ",") + "\r\n")

	start := domain.Now().AddDate(0, 0, -(days - 1))
	weight := 71.0
	for d := range days {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, domain.ChinaStandardTime).AddDate(0, 0, d)
		weight -= 0.05 + rng.Float64()*0.04
		readings := 1 + rng.IntN(4)
		for range readings {
			at := day.Add(time.Duration(5+rng.IntN(18))*time.Hour + time.Duration(rng.IntN(3600))*time.Second)
			w := round1(weight + rng.NormFloat64()*0.3)
			b.WriteString(row(at, w, rng.IntN(40) == 0))
		}
	}
	return b.String()
}

func row(at time.Time, weight float64, missing bool) string {
	bmi := round1(weight / math.Pow(heightCM/100, 2))
	fat := round1(18 + (weight-68)*0.6)
	fields := []string{
		at.UTC().Format("2006-01-02T15:04:05Z"),
		format(weight),
		format(heightCM),
		format(bmi),
		format(fat),
		format(round1(74 - fat*1.05)),
		format(round1(weight*0.043*100) / 100),
		strconv.Itoa(int(math.Round(weight * 22.4))),
		format(round1(47 - fat*0.1)),
		"9",
	}
	if missing {
		fields[1] = "--"
	}
	return strings.Join(fields, ",") + "\r\n"
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func format(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func printStats(ingested domain.IngestResult, sampled domain.SampleResult) {
	s := domain.Summarize(sampled.Samples)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d\n", len(ingested.Records))
	fmt.Printf("Malformed rows: short=%d, long=%d\n", ingested.ShortRows, ingested.LongRows)
	fmt.Printf("Invalid: times=%d, numbers=%d\n", ingested.InvalidTimes, ingested.InvalidNumbers)
	fmt.Printf("Morning candidates: %d\n", sampled.Candidates)
	fmt.Printf("Daily samples: %d\n", len(sampled.Samples))
	fmt.Printf("Weight: start=%g, current=%g, min=%g, max=%g\n",
		s.StartWeight, s.CurrentWeight, s.MinWeight, s.MaxWeight)
	if len(sampled.Samples) > 0 {
		first, _ := sampled.Samples[0].Time()
		last, _ := sampled.Samples[len(sampled.Samples)-1].Time()
		fmt.Printf("Span: %s .. %s\n", first, last)
	}
}
