package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/audit"
	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <website|news|social|legal|marketplace|all>",
	Short: "Find validated links for a business entity",
	Long: `Resolve builds a search query for one use case, runs it through the provider
failover chain, scores every result against the entity facts, and prints the
links that clear the acceptance threshold.

"all" runs every use case (and every configured social platform) concurrently.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: append(useCaseNames(), "all"),
	RunE:      runResolve,
}

func init() {
	addEntityFlags(resolveCmd)
	resolveCmd.Flags().String("platform", "", "social platform (default: every configured platform)")
	resolveCmd.Flags().Int("limit", 0, "maximum links per resolution (default from config)")
	resolveCmd.Flags().Bool("json", false, "output results as JSON")
	resolveCmd.Flags().Bool("yaml", false, "output results as YAML")
	resolveCmd.Flags().String("audit-db", "", "record every verdict in this SQLite file")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	facts, err := entityFacts(cmd)
	if err != nil {
		return err
	}
	platform, _ := cmd.Flags().GetString("platform")
	limit, _ := cmd.Flags().GetInt("limit")

	r, _, err := newResolver()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var out []types.Resolution
	if args[0] == "all" {
		out, err = r.All(ctx, facts, limit)
	} else {
		useCase, ok := types.ParseUseCase(args[0])
		if !ok {
			return fmt.Errorf("unknown use case %q (want one of %s, all)", args[0], strings.Join(useCaseNames(), ", "))
		}
		out, err = r.Resolve(ctx, useCase, resolve.Request{Facts: facts, Platform: types.Platform(platform), Limit: limit})
	}
	if err != nil {
		return err
	}

	if err := recordAudit(cmd, facts, out); err != nil {
		logger.Error().Err(err).Msg("recording audit run")
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	switch {
	case asJSON:
		return resolve.FormatJSON(out, os.Stdout)
	case asYAML:
		return resolve.FormatYAML(out, os.Stdout)
	default:
		resolve.FormatTable(out, os.Stdout)
		return nil
	}
}

// recordAudit writes the run to the audit database named by --audit-db or
// the audit.db_path setting. Without either it does nothing.
func recordAudit(cmd *cobra.Command, facts types.EntityFacts, out []types.Resolution) error {
	path := auditPath(cmd)
	if path == "" {
		return nil
	}
	store, err := audit.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runID := audit.NewRunID()
	n, err := store.Record(cmd.Context(), runID, facts, out...)
	if err != nil {
		return err
	}
	logger.Info().Str("run_id", runID).Int("verdicts", n).Str("db", path).Msg("audit run recorded")
	return nil
}

func auditPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("audit-db"); p != "" {
		return p
	}
	return cfg.Audit.DBPath
}

// addEntityFlags registers the flags that describe the entity.
func addEntityFlags(cmd *cobra.Command) {
	cmd.Flags().String("legal-name", "", "registered legal name")
	cmd.Flags().String("trade-name", "", "trade name, when different from the legal name")
	cmd.Flags().String("registry-id", "", "business registry ID in any punctuation")
	cmd.Flags().String("domain", "", "official domain or site URL")
	cmd.Flags().StringArray("partner", nil, "partner or officer name (repeatable)")
}

func entityFacts(cmd *cobra.Command) (types.EntityFacts, error) {
	var f types.EntityFacts
	f.LegalName, _ = cmd.Flags().GetString("legal-name")
	f.TradeName, _ = cmd.Flags().GetString("trade-name")
	f.RegistryID, _ = cmd.Flags().GetString("registry-id")
	f.Domain, _ = cmd.Flags().GetString("domain")
	f.PartnerNames, _ = cmd.Flags().GetStringArray("partner")
	if f.LegalName == "" && f.TradeName == "" && f.RegistryID == "" && f.Domain == "" {
		return f, fmt.Errorf("at least one of --legal-name, --trade-name, --registry-id, or --domain is required")
	}
	return f, nil
}

func useCaseNames() []string {
	names := make([]string, len(types.UseCases))
	for i, uc := range types.UseCases {
		names[i] = string(uc)
	}
	return names
}
