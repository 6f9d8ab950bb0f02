package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/arr-heatmap/internal/fetcher"
	"github.com/sells-group/arr-heatmap/internal/pipeline"
	"github.com/sells-group/arr-heatmap/internal/tier"
)

var (
	exportInput  string
	exportSheet  string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Normalize a local sheet export and write the clean records",
	Long:  "Reads a CSV or XLSX export of the company sheet, runs the normalization pipeline, and writes the accepted records as JSON, CSV, or a GeoJSON FeatureCollection for direct map-layer use.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		var values [][]string
		switch strings.ToLower(filepath.Ext(exportInput)) {
		case ".csv":
			values, err = fetcher.ReadCSV(exportInput)
		case ".xlsx":
			values, err = fetcher.ReadXLSX(exportInput, fetcher.XLSXOptions{SheetName: exportSheet})
		default:
			return eris.Errorf("export: unsupported input extension %q", filepath.Ext(exportInput))
		}
		if err != nil {
			return err
		}

		raws := fetcher.RowsFromValues(values, cfg.Pipeline.ExcludedColumns)
		view := p.BuildView(raws)
		zap.L().Info("export built",
			zap.String("input", exportInput),
			zap.Int("accepted", len(view.Records)),
			zap.Int("rejected", len(view.Rejections)),
		)

		var out []byte
		switch exportFormat {
		case "json":
			out, err = json.MarshalIndent(view, "", "  ")
		case "csv":
			out, err = csvutil.Marshal(view.Records)
		case "geojson":
			out, err = marshalGeoJSON(view, p.TierTable())
		default:
			return eris.Errorf("export: unknown format %q", exportFormat)
		}
		if err != nil {
			return eris.Wrap(err, "export: encode")
		}

		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.Write(append(out, '\n'))
			return err
		}
		if err := os.WriteFile(exportOut, out, 0o644); err != nil {
			return eris.Wrap(err, "export: write output")
		}
		return nil
	},
}

// marshalGeoJSON renders the accepted records as point features. Each
// feature carries the marker color of its revenue tier so a map layer can
// style without re-running classification.
func marshalGeoJSON(view pipeline.View, tiers tier.Table) ([]byte, error) {
	features := make([]*geojson.Feature, len(view.Records))
	for i, rec := range view.Records {
		features[i] = &geojson.Feature{
			ID:       rec.CompanyID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{rec.Longitude, rec.Latitude}),
			Properties: map[string]any{
				"name":    rec.Name,
				"address": rec.Address,
				"arr":     rec.ARR,
				"phone":   rec.Phone,
				"state":   rec.State,
				"color":   tiers.Classify(rec.ARR).Color,
			},
		}
	}
	return json.MarshalIndent(&geojson.FeatureCollection{Features: features}, "", "  ")
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "path to CSV or XLSX export (required)")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json, csv, geojson")
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output path (default stdout)")
	_ = exportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd)
}
