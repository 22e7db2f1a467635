package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
	"github.com/signalpages/ComicScannerApp-sub000/internal/pricing"
)

var (
	priceSeries string
	priceIssue  string
	priceYear   string
	priceJSON   bool
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Estimate the market value of a single comic",
	Example: `  comicprice price --series "Amazing Spider-Man" --issue 300 --year 1988
  comicprice price --series "Saga" --issue 1 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPricing(ctx, cfg, "price")
		if err != nil {
			return err
		}
		defer env.Close()

		est, err := env.Pricer.PriceComic(ctx, pricing.Request{
			Series: priceSeries,
			Issue:  priceIssue,
			Year:   priceYear,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if priceJSON {
			return writeEstimateJSON(out, est)
		}
		fmt.Fprintln(out, renderEstimate(est))
		return nil
	},
}

func writeEstimateJSON(w io.Writer, est *model.PriceEstimate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}

func init() {
	priceCmd.Flags().StringVar(&priceSeries, "series", "", "series title (required)")
	priceCmd.Flags().StringVar(&priceIssue, "issue", "", "issue number")
	priceCmd.Flags().StringVar(&priceYear, "year", "", "publication year")
	priceCmd.Flags().BoolVar(&priceJSON, "json", false, "print the estimate as JSON")
	_ = priceCmd.MarkFlagRequired("series")
	rootCmd.AddCommand(priceCmd)
}
