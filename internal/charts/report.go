package charts

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/duelkeeper/duelkeeper/internal/stats"
)

// maxSetBuckets caps the sets chart so a large collection stays readable.
const maxSetBuckets = 15

// WriteReport composes a collection summary into a single HTML page:
// a rarity bar chart, a set pie chart, a language pie chart, and, when
// valueHistory is non-empty, a collection value line chart.
func WriteReport(w io.Writer, summary *stats.Summary, valueHistory []DataPoint) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = fmt.Sprintf("%s - Collection Report", summary.CollectionName)

	subtitle := fmt.Sprintf("%d cards, %d unique prints, total value $%.2f",
		summary.TotalCards, summary.UniqueVariants, summary.TotalValue)

	rarityConfig := DefaultChartConfig()
	rarityConfig.Title = "Cards by Rarity"
	rarityConfig.Subtitle = subtitle
	page.AddCharts(NewBarChart(bucketsToPoints(summary.ByRarity), rarityConfig))

	setConfig := DefaultChartConfig()
	setConfig.Title = "Cards by Set"
	setConfig.SeriesName = "Sets"
	page.AddCharts(NewPieChart(bucketsToPoints(summary.TopSets(maxSetBuckets)), setConfig))

	langConfig := DefaultChartConfig()
	langConfig.Title = "Cards by Language"
	langConfig.SeriesName = "Languages"
	page.AddCharts(NewPieChart(bucketsToPoints(summary.ByLanguage), langConfig))

	if len(valueHistory) > 0 {
		valueConfig := DefaultChartConfig()
		valueConfig.Title = "Collection Value Over Time"
		valueConfig.SeriesName = "Value"
		page.AddCharts(NewLineChart(valueHistory, valueConfig))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// RenderReport writes the report page to an HTML file.
func RenderReport(summary *stats.Summary, valueHistory []DataPoint, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	return WriteReport(f, summary, valueHistory)
}

func bucketsToPoints(buckets []stats.Bucket) []DataPoint {
	points := make([]DataPoint, len(buckets))
	for i, b := range buckets {
		points[i] = DataPoint{Label: b.Label, Value: float64(b.Quantity)}
	}
	return points
}
