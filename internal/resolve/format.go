// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// FormatTable writes resolutions as a human-readable table to w.
func FormatTable(resolutions []types.Resolution, w io.Writer) {
	for i, res := range resolutions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		label := string(res.UseCase)
		if res.Platform != "" {
			label += "/" + string(res.Platform)
		}
		fmt.Fprintf(w, "%s  provider=%s", label, res.Provider)
		if res.FallbackUsed {
			fmt.Fprint(w, " (fallback)")
		}
		fmt.Fprintln(w)

		if len(res.Links) == 0 {
			fmt.Fprintf(w, "No linked results (%d rejected).\n", len(res.Rejected))
			continue
		}

		fmt.Fprintf(w, "%-4s  %-5s  %-6s  %-50s  %s\n", "Rank", "Score", "Conf", "URL", "Handle")
		fmt.Fprintln(w, strings.Repeat("-", 90))
		for j, l := range res.Links {
			handle := ""
			if l.Handle != nil {
				handle = l.Handle.Identifier
			}
			fmt.Fprintf(w, "%-4d  %-5d  %-6s  %-50s  %s\n",
				j+1, l.Validation.Score, l.Validation.Confidence, truncate(l.Candidate.URL, 50), handle)
		}
		fmt.Fprintf(w, "\n%d linked, %d rejected\n", len(res.Links), len(res.Rejected))
	}
}

// FormatValidation writes one verdict with its reasons and warnings.
func FormatValidation(v types.ValidationResult, w io.Writer) {
	fmt.Fprintf(w, "linked=%t score=%d confidence=%s\n", v.Linked, v.Score, v.Confidence)
	for _, r := range v.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	for _, warn := range v.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatYAML writes v as YAML to w.
func FormatYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
