package commands

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh/session"
)

// bench: n independent in-memory handshakes, p at a time.
func benchCmd() *cobra.Command {
	var n, parallel int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run many independent handshakes concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 {
				return fmt.Errorf("--sessions must be at least 1")
			}
			start := time.Now()
			results, err := session.RunConcurrent(cmd.Context(), cfg, n, parallel, sessionOptions())
			if err != nil {
				return err
			}
			wall := time.Since(start)

			elapsed := make([]time.Duration, len(results))
			distinct := map[string]bool{}
			for i, r := range results {
				elapsed[i] = r.Elapsed
				distinct[r.Fingerprint] = true
			}
			slices.Sort(elapsed)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d handshakes in %s (%.1f/s), %d distinct key sets\n",
				n, wall.Round(time.Millisecond), float64(n)/wall.Seconds(), len(distinct))
			fmt.Fprintf(out, "per handshake: min %s, median %s, max %s\n",
				elapsed[0], elapsed[n/2], elapsed[n-1])
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "sessions", "n", 100, "number of handshakes")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 8, "handshakes in flight at once (0 = all)")
	return cmd
}
