package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"stablebin/adapters/excel"
	"stablebin/adapters/memory"
	"stablebin/adapters/report"
	"stablebin/adapters/search"
	"stablebin/adapters/split"
	"stablebin/app"
	"stablebin/domain/binning"
	"stablebin/domain/core"
	"stablebin/ports"
)

func main() {
	input := flag.String("input", "", "xlsx or csv observation file (required)")
	labelCol := flag.String("label", "label", "binary label column name")
	cohortCol := flag.String("cohort", "cohort", "time cohort column name")
	feature := flag.String("feature", "", "feature column to bin (default: all)")
	trials := flag.Int("trials", 20, "search trials per feature (0 = single fit with defaults)")
	sampler := flag.String("sampler", "random", "trial sampler: random or grid")
	gridSteps := flag.Int("grid-steps", 4, "lattice resolution per dimension for the grid sampler")
	seed := flag.Int64("seed", 42, "search seed")
	parallelism := flag.Int("parallelism", 4, "concurrent trials")
	out := flag.String("out", "", "write markdown report to this file (default: stdout)")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("[CLI] loaded .env")
	}
	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	reader := excel.NewDataReader(*input, *labelCol, *cohortCol)
	ds, err := reader.Read(ctx)
	if err != nil {
		log.Fatalf("[CLI] read failed: %v", err)
	}
	fingerprint := ds.Fingerprint()
	log.Printf("[CLI] dataset fingerprint %s", fingerprint)

	var smp ports.Sampler
	switch *sampler {
	case "random":
		smp = search.NewRandom()
	case "grid":
		smp = search.NewGrid(*gridSteps)
	default:
		log.Fatalf("[CLI] unknown sampler %q (want random or grid)", *sampler)
	}

	binningService := app.NewBinningService(split.NewQuantile(), split.NewRateOrdered())
	searchService := app.NewSearchService(binningService, smp, memory.NewTrialLedger(), search.NewSeededRNG())

	features := ds.FeatureKeys()
	if *feature != "" {
		key, err := core.ParseFeatureKey(*feature)
		if err != nil {
			log.Fatalf("[CLI] %v", err)
		}
		features = []core.FeatureKey{key}
	}

	// Stamp the report with the input fingerprint so it can be tied back to
	// the extract it was produced from.
	md := fmt.Sprintf("Dataset fingerprint: `%s`\n\n", fingerprint)
	for _, key := range features {
		section, err := run(ctx, binningService, searchService, ds, key, *trials, *seed, *parallelism)
		if err != nil {
			log.Printf("[CLI] feature %s: %v", key, err)
			continue
		}
		md += section + "\n"
	}

	if *out == "" {
		fmt.Print(md)
		return
	}
	if err := os.WriteFile(*out, []byte(md), 0o644); err != nil {
		log.Fatalf("[CLI] write report: %v", err)
	}
	log.Printf("[CLI] report written to %s", *out)
}

func run(ctx context.Context, binningService *app.BinningService, searchService *app.SearchService,
	ds *binning.Dataset, key core.FeatureKey, trials int, seed int64, parallelism int) (string, error) {

	values := ds.Numeric[key]
	categories := ds.Categorical[key]
	if values == nil && categories == nil {
		return "", fmt.Errorf("feature column not found")
	}

	if trials <= 0 {
		result, err := binningService.Fit(ctx, app.FitRequest{
			Feature:    key,
			Values:     values,
			Categories: categories,
			Labels:     ds.Labels,
			Cohorts:    ds.Cohorts,
			Config:     binning.DefaultConfig(),
		})
		if err != nil {
			return "", err
		}
		return report.BuildFitReport(result), nil
	}

	result, err := searchService.Run(ctx, app.SearchRequest{
		Feature:     key,
		Values:      values,
		Categories:  categories,
		Labels:      ds.Labels,
		Cohorts:     ds.Cohorts,
		Base:        binning.DefaultConfig(),
		Trials:      trials,
		Seed:        seed,
		Parallelism: parallelism,
	})
	if err != nil {
		return "", err
	}
	return report.BuildSearchReport(result), nil
}
