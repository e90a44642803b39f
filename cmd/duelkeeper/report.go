package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/duelkeeper/duelkeeper/internal/charts"
	"github.com/duelkeeper/duelkeeper/internal/collection"
	"github.com/duelkeeper/duelkeeper/internal/stats"
)

func runReportCommand(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	name := fs.String("collection", "", "Collection name (required)")
	output := fs.String("o", "", "Output HTML file (default: <collection>_report.html)")
	openAfter := fs.Bool("open", false, "Open the report in the default browser")
	_ = fs.Parse(args)

	if *name == "" {
		log.Fatal("Error: -collection is required")
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	filename, err := a.resolveCollectionFile(*name)
	if err != nil {
		log.Fatalf("Error resolving collection: %v", err)
	}
	col, err := a.collections.Load(filename)
	if err != nil {
		log.Fatalf("Error loading collection: %v", err)
	}

	summary := stats.Compute(col)
	valueHistory := buildValueHistory(a, col)

	outputPath := *output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(filename, filepath.Ext(filename)) + "_report.html"
	}

	if err := charts.RenderReport(summary, valueHistory, outputPath); err != nil {
		log.Fatalf("Error rendering report: %v", err)
	}
	fmt.Printf("Report written to %s\n", outputPath)


	fmt.Printf("\n%s: %d cards, %d unique, total value $%.2f\n",
		summary.CollectionName, summary.TotalCards, summary.UniqueCards, summary.TotalValue)
	for _, bucket := range summary.ByRarity {
		fmt.Printf("  %-32s %5d  $%.2f\n", bucket.Label, bucket.Quantity, bucket.Value)
	}

	if *openAfter {
		if err := charts.OpenInBrowser(outputPath); err != nil {
			log.Printf("Warning: could not open browser: %v", err)
		}
	}
}

// buildValueHistory reconstructs the collection's value over time from
// recorded price samples: for each sampled day, owned quantities priced at
// that day's samples. Days without samples are skipped; without a price
// history store the result is empty.
func buildValueHistory(a *app, col *collection.Collection) []charts.DataPoint {
	if a.history == nil {
		return nil
	}

	quantities := make(map[string]int)
	for _, card := range col.Cards {
		for _, variant := range card.Variants {
			quantities[variant.VariantID] += variant.Quantity()
		}
	}

	ctx := context.Background()
	byDay := make(map[string]float64)
	for variantID, qty := range quantities {
		samples, err := a.history.Samples(ctx, variantID)
		if err != nil {
			log.Printf("Warning: price history for %s unavailable: %v", variantID, err)
			continue
		}
		// Last sample of each day wins for that variant.
		perDay := make(map[string]float64)
		for _, sample := range samples {
			perDay[sample.CapturedAt.Format("2006-01-02")] = sample.Price
		}
		for day, price := range perDay {
			byDay[day] += price * float64(qty)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]charts.DataPoint, len(days))
	for i, day := range days {
		points[i] = charts.DataPoint{Label: day, Value: byDay[day]}
	}
	return points
}
