package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jainprashuk/LeadLens/internal/jobs"
)

func newPlanCommand(a *app) *cobra.Command {
	var jf jobFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the expanded search jobs without running them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, source := jf.load(a.log)
			expanded := jobs.Expand(list)

			output := jf.output
			if output == "" {
				output = a.cfg.OutputFile
			}
			now := time.Now()

			fmt.Fprintf(cmd.OutOrStdout(), "%d job(s) from %s\n", len(expanded), source)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSEARCH\tSCROLLS\tINPUT\tOUTPUT")
			for i, j := range expanded {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					i+1, j.SearchQuery(), j.ScrollCount(jf.scrolls), j.Input, j.OutputPath(a.cfg.DataDir, output, now))
			}
			return w.Flush()
		},
	}
	jf.register(cmd)
	return cmd
}
