package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takallem/takallem/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect recorded service requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent service requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failed, _ := cmd.Flags().GetBool("failed")

		events, err := queryRequests(cmd, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No requests recorded yet.")
			return nil
		}

		// Header.
		fmt.Printf("%-6s  %-19s  %-6s  %-52s  %6s  %7s  %s\n",
			"ID", "Timestamp", "Method", "Route", "Status", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 110))

		for _, e := range events {
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			route := e.Route
			if len(route) > 52 {
				route = route[:49] + "..."
			}
			fmt.Printf("%-6d  %-19s  %-6s  %-52s  %6d  %7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Method,
				route,
				e.Status,
				e.LatencyMs,
				ok,
			)
			if !e.Success && e.ErrorMessage != "" {
				fmt.Printf("        %s\n", e.ErrorMessage)
			}
		}
		return nil
	},
}

type routeStats struct {
	Route    string
	Calls    int
	Failures int
	TotalMs  int64
}

var requestsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize request counts and latency by route",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := queryRequests(cmd, 0)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No requests recorded yet.")
			return nil
		}

		byRoute := map[string]*routeStats{}
		for _, e := range events {
			key := e.Method + " " + e.Route
			rs, ok := byRoute[key]
			if !ok {
				rs = &routeStats{Route: key}
				byRoute[key] = rs
			}
			rs.Calls++
			rs.TotalMs += e.LatencyMs
			if !e.Success {
				rs.Failures++
			}
		}
		stats := make([]*routeStats, 0, len(byRoute))
		for _, rs := range byRoute {
			stats = append(stats, rs)
		}
		sort.Slice(stats, func(i, j int) bool {
			if stats[i].Calls != stats[j].Calls {
				return stats[i].Calls > stats[j].Calls
			}
			return stats[i].Route < stats[j].Route
		})

		fmt.Printf("%-60s  %6s  %8s  %8s\n", "Route", "Calls", "Failures", "Avg Ms")
		fmt.Println(strings.Repeat("─", 90))
		var calls, failures int
		for _, rs := range stats {
			fmt.Printf("%-60s  %6d  %8d  %8d\n", rs.Route, rs.Calls, rs.Failures, rs.TotalMs/int64(rs.Calls))
			calls += rs.Calls
			failures += rs.Failures
		}
		fmt.Println(strings.Repeat("─", 90))
		fmt.Printf("%-60s  %6d  %8d\n", "TOTAL", calls, failures)
		return nil
	},
}

func queryRequests(cmd *cobra.Command, limit int) ([]store.RequestEvent, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	events, err := s.EventRepo().QueryRequests(cmd.Context(), store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

func init() {
	requestsListCmd.Flags().Int("limit", 50, "Maximum number of requests to show")
	requestsListCmd.Flags().Bool("failed", false, "Only show failed requests")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsStatsCmd)
}
