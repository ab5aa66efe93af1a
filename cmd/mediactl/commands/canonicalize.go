package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"marketmedia/internal/services"

	"github.com/spf13/cobra"
)

var (
	// Canonicalize flags
	storeID   int64
	productID int64
	thumbnail bool
)

type canonicalizeResult struct {
	Stored    string `json:"stored"`
	Canonical string `json:"canonical"`
	Drifted   bool   `json:"drifted"`
}

// canonicalizeCmd rewrites a URL into the tenant scoped layout
var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize <url>...",
	Short: "Print the canonical location of stored image URLs",
	Long: `Rebuild stored image URLs under the canonical uploads layout for an
owner. No database or storage access is needed.

Examples:
  mediactl canonicalize --store 9 --product 19 /uploads/products/19/a.jpg
  mediactl canonicalize --store 9 --thumbnail https://cdn.example.com/logo.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCanonicalize(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(canonicalizeCmd)

	canonicalizeCmd.Flags().Int64Var(&storeID, "store", 0, "Owning store ID")
	canonicalizeCmd.Flags().Int64Var(&productID, "product", 0, "Owning product ID, omit for store images")
	canonicalizeCmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "Treat the URLs as thumbnails")
	_ = canonicalizeCmd.MarkFlagRequired("store")
}

func runCanonicalize(out io.Writer, urls []string) error {
	if storeID <= 0 {
		return fmt.Errorf("--store must be a positive id")
	}
	if productID < 0 {
		return fmt.Errorf("--product must be a positive id")
	}

	target := services.PathTarget{StoreID: storeID, ProductID: productID, Variant: services.VariantFull}
	if thumbnail {
		target.Variant = services.VariantThumbnail
	}

	results := make([]canonicalizeResult, 0, len(urls))
	for _, stored := range urls {
		canonical, drifted, err := services.CanonicalizeURL(stored, target)
		if err != nil {
			return fmt.Errorf("%s: %w", strconv.Quote(stored), err)
		}
		results = append(results, canonicalizeResult{Stored: stored, Canonical: canonical, Drifted: drifted})
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		marker := " "
		if r.Drifted {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, r.Canonical)
	}
	return nil
}
