package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

type siteOutput struct {
	URL     string            `json:"url"`
	OK      bool              `json:"ok"`
	Score   int               `json:"score"`
	Details map[string]string `json:"details"`
}

func newCheckSiteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-site URL",
		Short: "Probe one website and print its quality score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.checker(true).Check(args[0], a.cfg.SiteCheckTimeout)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(siteOutput{URL: args[0], OK: res.OK(), Score: res.ScoreOrZero(), Details: res.Details})
		},
	}
}
