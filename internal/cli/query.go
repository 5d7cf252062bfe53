package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// queryCmd groups shortcuts for the read-only methods
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query market state",
}

var feeDenomCmd = &cobra.Command{
	Use:   "fee-denom",
	Short: "Show the active fee denomination",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd.Context(), cmd.OutOrStdout(), "fee_denom", nil)
	},
}

var listingsCmd = &cobra.Command{
	Use:   "listings <owner> [page]",
	Short: "List the listings owned by an address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := pageArg(args, 1)
		if err != nil {
			return err
		}
		return runQuery(cmd, "listings_by_owner", map[string]interface{}{"owner": args[0], "page": page})
	},
}

var bucketsCmd = &cobra.Command{
	Use:   "buckets <owner> [page]",
	Short: "List the buckets owned by an address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := pageArg(args, 1)
		if err != nil {
			return err
		}
		return runQuery(cmd, "buckets_by_owner", map[string]interface{}{"owner": args[0], "page": page})
	},
}

var marketCmd = &cobra.Command{
	Use:   "market [page]",
	Short: "List the listings currently on the market",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := pageArg(args, 0)
		if err != nil {
			return err
		}
		return runQuery(cmd, "listings_for_market", map[string]interface{}{"page": page})
	},
}

var listingCmd = &cobra.Command{
	Use:   "listing <id>",
	Short: "Show one listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		return runQuery(cmd, "listing", map[string]interface{}{"id": id})
	},
}

var bucketCmd = &cobra.Command{
	Use:   "bucket <id>",
	Short: "Show one bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		return runQuery(cmd, "bucket", map[string]interface{}{"id": id})
	},
}

var royaltyCmd = &cobra.Command{
	Use:   "royalty <collection>",
	Short: "Show the royalty registered for an NFT collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, "royalty", map[string]interface{}{"nft_collection": args[0]})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(feeDenomCmd, listingsCmd, bucketsCmd, marketCmd, listingCmd, bucketCmd, royaltyCmd)
}

func runQuery(cmd *cobra.Command, method string, params map[string]interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	return executeMethod(cmd.Context(), cmd.OutOrStdout(), method, raw)
}

// pageArg parses the optional page argument at index i.
func pageArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, nil
	}
	page, err := strconv.Atoi(args[i])
	if err != nil || page < 0 {
		return 0, fmt.Errorf("invalid page %q", args[i])
	}
	return page, nil
}
