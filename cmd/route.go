package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ftth-cli/internal/config"
	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/resilience"
	"github.com/sells-group/ftth-cli/internal/routing"
)

var routeFormat string

var routeCmd = &cobra.Command{
	Use:   "route <file.kmz>",
	Short: "Route the HUB → NODE → NAP feeder links of a design",
	Long: "Derives the feeder topology (first hub box to first node, node to every NAP box) and looks up " +
		"street-following paths. Links fall back to straight lines when routing is disabled or fails.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("route"); err != nil {
			return err
		}

		m, _, err := loadDesign(args[0])
		if err != nil {
			return err
		}

		links := design.Topology(m)
		if len(links) == 0 {
			zap.L().Warn("route: design has no hub box or node, nothing to route")
		}
		routed := routing.RouteLinks(cmd.Context(), newRouter(cfg.Routing), links, cfg.Routing.Concurrency)

		return render(cmd.OutOrStdout(), routeFormat, routed, func(tw *tabwriter.Writer) {
			row(tw, "LINK", "FROM", "TO", "STRAIGHT (km)", "PATH (km)", "ROUTED")
			var total float64
			for _, rl := range routed {
				total += rl.Path.LengthKm
				row(tw, rl.Kind, rl.From.Name, rl.To.Name,
					fmt.Sprintf("%.3f", rl.StraightKm()),
					fmt.Sprintf("%.3f", rl.Path.LengthKm),
					rl.Path.Routed,
				)
			}
			row(tw, "TOTAL", "", "", "", fmt.Sprintf("%.3f", total), "")
		})
	},
}

// newRouter builds the routing fallback from configuration. With routing
// disabled every lookup is a straight line.
func newRouter(rc config.RoutingConfig) *routing.Fallback {
	log := zap.L()
	if !rc.Enabled {
		return routing.WithFallback(nil, routing.WithFallbackLogger(log))
	}

	policy := resilience.DefaultRetryPolicy()
	policy.MaxAttempts = rc.MaxAttempts

	client := routing.NewOSRMClient(
		routing.WithBaseURL(rc.BaseURL),
		routing.WithProfile(rc.Profile),
		routing.WithRateLimit(rc.RatePerSec),
		routing.WithRetryPolicy(policy),
		routing.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
			FailureThreshold: rc.FailureThreshold,
			ResetTimeout:     rc.ResetTimeout(),
			OnStateChange: func(from, to resilience.State) {
				log.Warn("routing: circuit state changed",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})),
		routing.WithLogger(log),
	)
	return routing.WithFallback(client,
		routing.WithLookupTimeout(rc.Timeout()),
		routing.WithFallbackLogger(log),
	)
}

func init() {
	routeCmd.Flags().StringVar(&routeFormat, "format", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(routeCmd)
}
