package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/internal/server"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score one candidate link against entity facts",
	Long: `Validate scores a single candidate (URL, title, snippet) against the entity
facts without searching, and prints the verdict with every rule that fired.

The legal profile rejects records that carry neither the registry ID nor the
legal name; the marketplace profile raises weak listings that name the entity
to the review band.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		facts, err := entityFacts(cmd)
		if err != nil {
			return err
		}
		var c types.ProviderResult
		c.URL, _ = cmd.Flags().GetString("url")
		c.Title, _ = cmd.Flags().GetString("title")
		c.Snippet, _ = cmd.Flags().GetString("snippet")

		base, err := newValidator()
		if err != nil {
			return err
		}
		profile, _ := cmd.Flags().GetString("profile")
		v, err := server.Profile(base, profile)
		if err != nil {
			return err
		}

		result := v.Validate(c, facts)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return resolve.FormatJSON(result, os.Stdout)
		}
		resolve.FormatValidation(result, os.Stdout)
		return nil
	},
}

func init() {
	addEntityFlags(validateCmd)
	validateCmd.Flags().String("url", "", "candidate URL")
	validateCmd.Flags().String("title", "", "candidate title")
	validateCmd.Flags().String("snippet", "", "candidate snippet")
	validateCmd.Flags().String("profile", "generic", "validator profile: generic, legal, marketplace")
	validateCmd.Flags().Bool("json", false, "output the verdict as JSON")
	validateCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(validateCmd)
}
