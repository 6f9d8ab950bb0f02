package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configured tier, region, and column tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := buildPipeline(cfg); err != nil {
			return err
		}
		fmt.Println("configuration ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
