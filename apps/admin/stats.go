package main

import (
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (cli *commandLine) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "print usage statistics and the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := cli.store.Stats(commandContext(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
			rows := []struct {
				label string
				value interface{}
			}{
				{"users", stats.TotalUsers},
				{"students", stats.Students},
				{"admins", stats.Admins},
				{"active users", stats.ActiveUsers},
				{"classes", stats.Classes},
				{"tasks", stats.Tasks},
				{"completions", stats.Completions},
				{"average points", stats.AveragePoints},
				{"total logins", stats.TotalLogins},
				{"knowledge entries", stats.KnowledgeEntries},
				{"log entries", stats.LogEntries},
			}
			for _, row := range rows {
				_, _ = fmtRow(w, row.label, row.value)
			}
			if len(stats.TopStudents) > 0 {
				_, _ = fmtRow(w, "top students", "")
				for i, st := range stats.TopStudents {
					_, _ = fmtRow(w, "", fmtLeader(i+1, st.Name, st.Class, st.Points, st.Level))
				}
			}
			return w.Flush()
		},
	}
}

func (cli *commandLine) logsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "print the most recent log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := cli.store.Logs(commandContext(cmd), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
			for _, entry := range logs {
				_, _ = fmtRow(w, entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level, entry.Type, entry.User, entry.Action)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries (0 for all)")
	return cmd
}
