package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/arr-heatmap/internal/format"
	"github.com/sells-group/arr-heatmap/internal/pipeline"
)

var viewText bool

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Fetch the sheet once and print the map view bundle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		fetch, err := newSheetFetch(ctx, cfg)
		if err != nil {
			return err
		}

		raws, err := fetch(ctx)
		if err != nil {
			return eris.Wrap(err, "fetch sheet")
		}

		view := p.BuildView(raws)
		zap.L().Info("view built",
			zap.Int("accepted", len(view.Records)),
			zap.Int("rejected", len(view.Rejections)),
		)

		if viewText {
			printLegends(view)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	},
}

func printLegends(view pipeline.View) {
	fmt.Println("ARR Legend")
	for i := len(view.Tiers) - 1; i >= 0; i-- {
		t := view.Tiers[i]
		fmt.Printf("  %s -- %s\n", t.Label, format.LegendLine(t.Accounts, t.TierSum))
	}
	fmt.Println("Regional ARR Breakdown")
	for _, r := range view.Regions {
		fmt.Printf("  %s -- %s\n", r.Label, format.LegendLine(r.Accounts, r.TotalARR))
	}
}

func init() {
	viewCmd.Flags().BoolVar(&viewText, "text", false, "print legend summaries instead of JSON")
	rootCmd.AddCommand(viewCmd)
}
