package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/rgraph/internal/demo"
	"github.com/gogpu/rgraph/resource"
)

// kinds is the order cache statistics are printed in.
var kinds = []resource.Kind{
	resource.KindBuffer,
	resource.KindTexture,
	resource.KindShader,
	resource.KindPipeline,
	resource.KindBindGroup,
}

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <framefile>",
		Short: "Render a frame file on a GPU backend and report cache statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, _ := cmd.Flags().GetInt("frames")
			backend, _ := cmd.Flags().GetString("backend")

			report, err := c.app.Run(cmd.Context(), args[0], demo.Options{
				Frames:  frames,
				Backend: backend,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s on %s (%s): %d frames, %d cameras, %d submissions\n",
				report.Label, report.Backend, report.Adapter, report.Frames, report.Cameras, report.Submissions)
			_, _ = fmt.Fprintf(out, "passes: draws=%d dispatches=%d\n", report.Draws, report.Dispatches)
			g := report.Graph
			_, _ = fmt.Fprintf(out, "graph: executions=%d created=%d reused=%d destroyed=%d\n",
				g.Frames, g.Created, g.Reused, g.Destroyed)
			for _, k := range kinds {
				_, _ = fmt.Fprintf(out, "cache %-10s %s\n", k.String()+":", report.Cache[k])
			}
			_, _ = fmt.Fprintf(out, "shared pipelines: %d\n", report.SharedPipelines)
			return nil
		},
	}
	cmd.Flags().IntP("frames", "n", 0, "Number of frames to render (default: the frame file's value)")
	cmd.Flags().StringP("backend", "b", demo.DefaultBackend, "HAL backend to render on")
	return cmd
}
