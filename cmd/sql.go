package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the kill feed",
	Long: `Load the kill feed into an in-memory SQLite database, run an arbitrary
query against it and print the results as a table. Nothing is written back.

Schema:
  kills(id, player, enrage, time_of_kill, kill_time_seconds, member_count)

time_of_kill is Unix seconds. Example:
  enragetracker sql "SELECT player, MAX(enrage) FROM kills GROUP BY player"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	return querySnapshot(os.Stdout, d, strings.Join(args, " "))
}

func querySnapshot(w io.Writer, d *dashboard, query string) error {
	db, err := d.snapshot()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return nil
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
	return nil
}
