package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/evidence"
	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract a profile handle from a social or marketplace URL",
	Long: `Extract reads the profile handle from a social network or marketplace URL.
Content URLs (posts, videos, product listings, groups) carry no handle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")

		var h *types.ExtractedHandle
		if platform == "" {
			h = evidence.Extract(args[0])
		} else {
			if evidence.SiteDomain(types.Platform(platform)) == "" {
				return fmt.Errorf("unknown platform %q", platform)
			}
			h = evidence.ExtractHandle(args[0], types.Platform(platform))
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return resolve.FormatJSON(h, os.Stdout)
		}
		if h == nil {
			fmt.Println("No profile handle in URL.")
			return nil
		}
		fmt.Printf("%s\t%s\n", h.Platform, h.Identifier)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("platform", "", "platform to match (default: detect from host)")
	extractCmd.Flags().Bool("json", false, "output the handle as JSON")

	rootCmd.AddCommand(extractCmd)
}
