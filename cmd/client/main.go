// Package main is a cobra-based CLI client for the orchestration HTTP
// service: compile and run workflow text, check plan status, and inspect
// recorded cost.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "swarmctl",
		Short:         "Command-line client for the orchestration service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("addr", "http://localhost:8080", "base address of the orchestration service")

	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newCostsCommand())

	return cmd
}

func textFromFlags(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")
	if text == "" && file == "" {
		return "", fmt.Errorf("one of --text or --file is required")
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	}
	return text, nil
}

func newCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile workflow text into a plan without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			agentID, _ := cmd.Flags().GetString("agent")
			text, err := textFromFlags(cmd)
			if err != nil {
				return err
			}

			plan, err := postWorkflow(addr, "/api/v1/workflows/compile", text, agentID)
			if err != nil {
				return err
			}
			printPlan(cmd, plan)
			return nil
		},
	}
	cmd.Flags().String("text", "", "workflow DSL text")
	cmd.Flags().String("file", "", "path to a file containing workflow DSL text")
	cmd.Flags().String("agent", "", "default agent ID for tokens with no explicit agentId: prefix")
	return cmd
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile and execute workflow text, blocking until it reaches a terminal status",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			agentID, _ := cmd.Flags().GetString("agent")
			text, err := textFromFlags(cmd)
			if err != nil {
				return err
			}

			plan, err := postWorkflow(addr, "/api/v1/workflows/execute", text, agentID)
			if err != nil {
				return err
			}
			printPlan(cmd, plan)
			return nil
		},
	}
	cmd.Flags().String("text", "", "workflow DSL text")
	cmd.Flags().String("file", "", "path to a file containing workflow DSL text")
	cmd.Flags().String("agent", "", "default agent ID for tokens with no explicit agentId: prefix")
	return cmd
}

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <plan-id>",
		Short: "Fetch a previously compiled or executed plan by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			plan, err := getPlan(addr, args[0])
			if err != nil {
				return err
			}
			printPlan(cmd, plan)
			return nil
		},
	}
	return cmd
}

func newCostsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Inspect recorded dispatch cost",
	}
	cmd.AddCommand(newCostsSummaryCommand())
	cmd.AddCommand(newCostsByAgentCommand())
	cmd.AddCommand(newCostsByGuildCommand())
	cmd.AddCommand(newCostsExportCommand())
	return cmd
}

func newCostsSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print aggregate cost across providers, agents, and guilds",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			agentID, _ := cmd.Flags().GetString("agent")
			guild, _ := cmd.Flags().GetString("guild")
			limit, _ := cmd.Flags().GetInt("limit")

			summary, err := getCostSummary(addr, agentID, guild, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "totalCost=%.6f totalTasks=%d avgCostPerTask=%.6f\n",
				summary.TotalCost, summary.TotalTasks, summary.AvgCostPerTask)
			return nil
		},
	}
	cmd.Flags().String("agent", "", "filter by agentId")
	cmd.Flags().String("guild", "", "filter by guild")
	cmd.Flags().Int("limit", 10, "number of recent entries to include")
	return cmd
}

func newCostsByAgentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "by-agent <agent-id>",
		Short: "Print cost rolled up for a single agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			bd, err := getCostBreakdown(addr, "/api/v1/costs/by-agent/"+args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cost=%.6f tasks=%d\n", bd.Cost, bd.Tasks)
			return nil
		},
	}
}

func newCostsByGuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "by-guild <guild>",
		Short: "Print cost rolled up for a single guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			bd, err := getCostBreakdown(addr, "/api/v1/costs/by-guild/"+args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cost=%.6f tasks=%d\n", bd.Cost, bd.Tasks)
			return nil
		},
	}
}

func newCostsExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the full cost ledger as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			csv, err := getCostCSV(addr)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), csv)
			return nil
		},
	}
}

func printPlan(cmd *cobra.Command, plan *planDTO) {
	fmt.Fprintf(cmd.OutOrStdout(), "plan_id=%s status=%s steps=%d\n", plan.ID, plan.Status, len(plan.Steps))
	for _, s := range plan.Steps {
		if s.Result != nil && s.Result.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s agent=%s status=%s error=%s\n", s.ID, s.AgentID, s.Status, s.Result.Error)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s agent=%s status=%s\n", s.ID, s.AgentID, s.Status)
	}
}
