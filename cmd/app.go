package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arr-heatmap/internal/config"
	"github.com/sells-group/arr-heatmap/internal/fetcher"
	"github.com/sells-group/arr-heatmap/internal/model"
	"github.com/sells-group/arr-heatmap/internal/pipeline"
	"github.com/sells-group/arr-heatmap/internal/region"
	"github.com/sells-group/arr-heatmap/internal/tier"
	"github.com/sells-group/arr-heatmap/pkg/sheets"
)

// sheetFetch resolves the raw rows for one request. The remote variant
// owns all network, credential, and retry concerns; the pipeline itself
// only ever sees already-resolved rows.
type sheetFetch func(ctx context.Context) ([]model.RawRow, error)

// buildPipeline assembles the dataset pipeline from configuration,
// loading table overrides where configured. Table validation happens
// here, once, so malformed config fails at startup rather than per row.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	pcfg := pipeline.DefaultConfig()
	pcfg.Columns = cfg.Columns
	pcfg.Options.AllowNegativeRevenue = cfg.Pipeline.AllowNegativeRevenue

	if path := cfg.Tables.TierFile; path != "" {
		t, err := tier.Load(path)
		if err != nil {
			return nil, err
		}
		pcfg.Tiers = t
	}
	if path := cfg.Tables.RegionFile; path != "" {
		t, err := region.Load(path)
		if err != nil {
			return nil, err
		}
		pcfg.Regions = t
	}

	return pipeline.New(pcfg)
}

// newSheetFetch builds the remote fetch for the configured spreadsheet.
func newSheetFetch(ctx context.Context, cfg *config.Config) (sheetFetch, error) {
	client, err := sheets.NewClient(ctx, sheets.Credentials{
		KeyFile:     cfg.Sheets.CredentialsFile,
		ClientEmail: cfg.Sheets.ClientEmail,
		PrivateKey:  cfg.Sheets.PrivateKey,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Sheets.SpreadsheetID == "" {
		return nil, eris.New("sheets: spreadsheet id is required (HEATMAP_SHEETS_SPREADSHEET_ID)")
	}

	spreadsheetID := cfg.Sheets.SpreadsheetID
	readRange := cfg.Sheets.Range
	excluded := cfg.Pipeline.ExcludedColumns

	return func(ctx context.Context) ([]model.RawRow, error) {
		values, err := client.Values(ctx, spreadsheetID, readRange)
		if err != nil {
			return nil, err
		}
		return fetcher.RowsFromValues(values, excluded), nil
	}, nil
}
