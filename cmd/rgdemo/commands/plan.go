package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <framefile>",
		Short: "Print the compiled pass order of a frame file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.app.Plan(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s: %d passes, %d resources\n", plan.Label, len(plan.Steps), plan.Resources)
			for i, s := range plan.Steps {
				typ := s.Type
				if typ == "" {
					typ = "-"
				}
				_, _ = fmt.Fprintf(out, "%3d. %-16s %-8s", i+1, s.Name, typ)
				if len(s.Reads) > 0 {
					_, _ = fmt.Fprintf(out, " reads=%s", strings.Join(s.Reads, ","))
				}
				if len(s.Writes) > 0 {
					_, _ = fmt.Fprintf(out, " writes=%s", strings.Join(s.Writes, ","))
				}
				_, _ = fmt.Fprintln(out)
			}
			return nil
		},
	}
	return cmd
}
