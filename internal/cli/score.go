package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jainprashuk/LeadLens/internal/lead"
)

type scoreOutput struct {
	lead.Classification
	SiteScore int      `json:"site_score"`
	Flags     []string `json:"flags,omitempty"`
}

func newScoreCommand(a *app) *cobra.Command {
	var siteCheck bool
	cmd := &cobra.Command{
		Use:   "score [JSON]",
		Short: "Classify one business record given as JSON (argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if len(args) == 1 {
				raw = []byte(args[0])
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = data
			}

			dec := json.NewDecoder(strings.NewReader(string(raw)))
			dec.UseNumber()
			var m map[string]any
			if err := dec.Decode(&m); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}

			rec := lead.ResolveWebsite(lead.RecordFromMap(m))
			c := a.classifier(siteCheck && a.cfg.SiteCheckEnabled).Classify(rec)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(scoreOutput{Classification: c, SiteScore: c.Result.SiteScore, Flags: c.Result.Flags})
		},
	}
	cmd.Flags().BoolVar(&siteCheck, "site-check", false, "probe the record's website")
	return cmd
}
