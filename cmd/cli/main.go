package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spot-optimizer/internal/config"
	"spot-optimizer/internal/data"
	"spot-optimizer/internal/export"
	"spot-optimizer/internal/model"
	"spot-optimizer/internal/optimizer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "optimize":
		cmdOptimize(os.Args[2:])
	case "fetch":
		cmdFetch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli optimize --csv prices.csv --threshold 2.0 --out cycles.csv")
	fmt.Println("  cli optimize --start 2023-01-01 --end 2023-01-31 [--test-data]")
	fmt.Println("  cli fetch --start 2023-01-01 --end 2023-01-31 --out prices.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - optimize finds one charge/discharge cycle per day above the profit threshold")
	fmt.Println("  - fetch dumps spot prices in the same ';'-separated format optimize accepts")
}

func cmdOptimize(args []string) {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	csvPath := fs.String("csv", "", "Path to a ';'-separated spot price CSV (skips the API)")
	start := fs.String("start", "", "Start date YYYY-MM-DD (API mode)")
	end := fs.String("end", "", "End date YYYY-MM-DD (API mode)")
	threshold := fs.Float64("threshold", 0, "Minimum gross profit (EUR) for a cycle to be reported")
	testData := fs.Bool("test-data", false, "Use generated test data instead of the API")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	outPath := fs.String("out", "", "Output CSV path (default: stdout)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)

	var records []model.SpotPrice
	switch {
	case *csvPath != "":
		f, err := os.Open(*csvPath)
		if err != nil {
			fatal(err)
		}
		var diags []data.RowDiagnostic
		records, diags, err = data.ParseSpotPrices(f)
		f.Close()
		if err != nil {
			fatal(err)
		}
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "skipped line %d: %v\n", d.Line, d.Err)
		}
	default:
		startDay, endDay := parseWindow(*start, *end)
		if *testData {
			records = data.GenerateSyntheticPrices(startDay, endDay)
		} else {
			var err error
			records, err = cfg.NewMarketClient().FetchSpotPrices(startDay, endDay)
			if err != nil {
				fatal(err)
			}
		}
	}

	groups, dropped := optimizer.Normalize(records)
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "dropped %d duplicate records\n", dropped)
	}
	cycles := optimizer.Optimize(groups, *threshold, cfg.OptimizerOptions())

	out := os.Stdout
	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fatal(err)
		}
		f, err := os.Create(*outPath)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		out = f
	}
	if err := export.WriteCycles(out, cycles); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "found %d cycles across %d days\n", len(cycles), groups.Len())
}

func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	start := fs.String("start", "", "Start date YYYY-MM-DD")
	end := fs.String("end", "", "End date YYYY-MM-DD")
	testData := fs.Bool("test-data", false, "Use generated test data instead of the API")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	outPath := fs.String("out", "", "Output CSV path (default: stdout)")
	_ = fs.Parse(args)

	startDay, endDay := parseWindow(*start, *end)

	var records []model.SpotPrice
	if *testData {
		records = data.GenerateSyntheticPrices(startDay, endDay)
	} else {
		var err error
		records, err = loadConfig(*cfgPath).NewMarketClient().FetchSpotPrices(startDay, endDay)
		if err != nil {
			fatal(err)
		}
	}

	out := os.Stdout
	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fatal(err)
		}
		f, err := os.Create(*outPath)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		out = f
	}
	if err := data.WriteSpotPrices(out, records); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d records\n", len(records))
}

func loadConfig(path string) *config.Config {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		fatal(err)
	}
	return cfg
}

func parseWindow(start, end string) (time.Time, time.Time) {
	if start == "" || end == "" {
		fmt.Println("--start and --end are required")
		os.Exit(2)
	}
	startDay, err := model.ParseDay(start)
	if err != nil {
		fatal(err)
	}
	endDay, err := model.ParseDay(end)
	if err != nil {
		fatal(err)
	}
	if startDay.After(endDay) {
		fmt.Println("--start must not be after --end")
		os.Exit(2)
	}
	return startDay, endDay
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
