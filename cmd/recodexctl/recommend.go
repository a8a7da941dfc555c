package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recodex"
)

type recommendFlags struct {
	topN      int
	category  string
	text      string
	negative  string
	minPrice  float64
	maxPrice  float64
	minRating float64
	describe  bool
	asJSON    bool
}

func newRecommendCmd(g *globalFlags) *cobra.Command {
	f := &recommendFlags{}
	cmd := &cobra.Command{
		Use:   "recommend [prompt]",
		Short: "Recommend products for a prompt or explicit criteria",
		Long: `Without --category the prompt is analyzed into criteria first. With
--category the criteria flags are used as given and the prompt is optional.`,
		Example: `  recodexctl recommend "quiet bagless vacuum under 300"
  recodexctl recommend --category Laptop --min-price 800 --max-price 1200`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" && f.category == "" {
				return fmt.Errorf("a prompt or --category is required")
			}

			var extra []recodex.Option
			if f.describe {
				extra = append(extra, recodex.WithDescriptions())
			}
			c, err := g.client(extra...)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			var rec recodex.Recommendation
			if f.category != "" {
				rec = c.RecommendCriteria(ctx, f.criteria(), f.topN)
			} else if rec, err = c.Recommend(ctx, prompt, f.topN); err != nil {
				return err
			}

			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			printRecommendation(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.topN, "top", "n", 0, "number of products (default from client)")
	fl.StringVar(&f.category, "category", "", "catalog category; skips prompt analysis")
	fl.StringVar(&f.text, "text", "", "wanted keywords")
	fl.StringVar(&f.negative, "negative", "", "unwanted keywords")
	fl.Float64Var(&f.minPrice, "min-price", 0, "lower price bound")
	fl.Float64Var(&f.maxPrice, "max-price", 0, "upper price bound (0 = none)")
	fl.Float64Var(&f.minRating, "min-rating", 0, "minimum rating")
	fl.BoolVar(&f.describe, "describe", false, "generate LLM descriptions for cards")
	fl.BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (f *recommendFlags) criteria() recodex.Criteria {
	return recodex.Criteria{
		Category:           f.category,
		TextSearch:         f.text,
		NegativeTextSearch: f.negative,
		PriceMin:           f.minPrice,
		PriceMax:           f.maxPrice,
		MinRating:          f.minRating,
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRecommendation(w io.Writer, rec recodex.Recommendation) {
	fmt.Fprintln(w, rec.Summary)
	fmt.Fprintf(w, "criteria: %s\n", rec.Criteria)
	if rec.Expansions > 0 {
		fmt.Fprintf(w, "price window widened %d time(s)\n", rec.Expansions)
	}
	for i, card := range rec.Cards {
		fmt.Fprintf(w, "%d. %s  %.2f  rating %.1f (%d)  score %.2f\n",
			i+1, card.Title, card.Price, card.Rating, card.RatingCount, card.Score)
		if card.Description != "" && card.Description != card.Title {
			fmt.Fprintf(w, "   %s\n", card.Description)
		}
	}
}
