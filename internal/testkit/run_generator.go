package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// RunGeneratorConfig configures a synthetic instrument run
type RunGeneratorConfig struct {
	Rows     int           `json:"rows"`
	Seed     int64         `json:"seed"`
	Start    time.Time     `json:"start"`
	Interval time.Duration `json:"interval"`
	// SpikeRows get a +SpikeSize jump in Temp.
	SpikeRows []int   `json:"spike_rows"`
	SpikeSize float64 `json:"spike_size"`
	// MissingRate is the chance a Pressure reading is written as NA. Spike rows are never blanked.
	MissingRate float64 `json:"missing_rate"`
	Delimiter   rune    `json:"delimiter"`
	// DecimalComma writes 20,1 instead of 20.1; use with ';'.
	DecimalComma bool `json:"decimal_comma"`
}

// DefaultRunConfig returns a 200-row run sampled every 30 seconds with two spikes
func DefaultRunConfig() RunGeneratorConfig {
	return RunGeneratorConfig{
		Rows:        200,
		Seed:        42,
		Start:       time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Interval:    30 * time.Second,
		SpikeRows:   []int{50, 150},
		SpikeSize:   15,
		MissingRate: 0.02,
		Delimiter:   ',',
	}
}

// Run is one generated file: header, string cells and the rows that carry spikes.
type Run struct {
	Header  []string
	Records [][]string
	Spikes  []int
	// Missing lists the rows whose Pressure cell is NA.
	Missing []int

	delimiter rune
}

// RunGenerator produces deterministic lab-style readings: a timestamp, a drifting
// temperature, a pressure that falls linearly with temperature, an integer counter,
// a text sample label and a boolean pass flag.
type RunGenerator struct {
	config RunGeneratorConfig
	rng    *rand.Rand
}

// NewRunGenerator creates a generator seeded from config
func NewRunGenerator(config RunGeneratorConfig) *RunGenerator {
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	if config.Interval == 0 {
		config.Interval = time.Second
	}
	return &RunGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the run. The same config always yields the same cells.
func (g *RunGenerator) Generate() Run {
	spikes := make(map[int]bool, len(g.config.SpikeRows))
	for _, r := range g.config.SpikeRows {
		if r >= 0 && r < g.config.Rows {
			spikes[r] = true
		}
	}

	run := Run{
		Header:    []string{"Timestamp", "Temp", "Pressure", "Counts", "Sample", "Pass"},
		Records:   make([][]string, 0, g.config.Rows),
		delimiter: g.config.Delimiter,
	}

	for i := 0; i < g.config.Rows; i++ {
		at := g.config.Start.Add(time.Duration(i) * g.config.Interval)
		phase := 2 * math.Pi * float64(i) / float64(max(g.config.Rows, 1))
		temp := 20 + math.Sin(phase) + g.rng.NormFloat64()*0.2
		if spikes[i] {
			temp += g.config.SpikeSize
			run.Spikes = append(run.Spikes, i)
		}
		pressure := 101.3 - 0.05*(temp-20) + g.rng.NormFloat64()*0.005
		counts := 1000 + g.rng.Intn(50)

		pressureCell := g.number(pressure, 4)
		if !spikes[i] && g.rng.Float64() < g.config.MissingRate {
			pressureCell = "NA"
			run.Missing = append(run.Missing, i)
		}

		run.Records = append(run.Records, []string{
			at.Format("2006-01-02 15:04:05"),
			g.number(temp, 3),
			pressureCell,
			strconv.Itoa(counts),
			fmt.Sprintf("S-%03d", i%25),
			strconv.FormatBool(temp < 30),
		})
	}
	return run
}

func (g *RunGenerator) number(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if g.config.DecimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// CSV renders the run with its configured delimiter. Without header the data rows start
// at the first line.
func (r Run) CSV(header bool) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = r.delimiter
	if header {
		_ = w.Write(r.Header)
	}
	_ = w.WriteAll(r.Records)
	return buf.String()
}
