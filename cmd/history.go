package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past searches",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("history"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		keywords, _ := cmd.Flags().GetString("keywords")
		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListSearches(ctx, store.SearchFilter{
			Keywords: keywords,
			Source:   model.SearchSource(source),
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "history list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No searches found.")
			return nil
		}

		formatHistory(os.Stdout, runs)
		return nil
	},
}

func init() {
	historyListCmd.Flags().String("keywords", "", "filter by exact keywords")
	historyListCmd.Flags().String("source", "", "filter by source (api, download, cli)")
	historyListCmd.Flags().Int("limit", 50, "max number of searches to display")

	historyCmd.AddCommand(historyListCmd)
	rootCmd.AddCommand(historyCmd)
}

// formatHistory writes a tabular list of searches to out.
func formatHistory(out io.Writer, runs []model.SearchRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKEYWORDS\tLOCATION\tSOURCE\tLEADS\tPAGES\tDURATION\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t--------\t------\t-----\t-----\t--------\t-------")

	for _, r := range runs {
		dur := (time.Duration(r.DurationMs) * time.Millisecond).Round(10 * time.Millisecond).String()

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			truncate(r.Keywords, 30),
			truncate(r.Location, 20),
			r.Source,
			r.LeadCount,
			r.TargetCount,
			r.Pages,
			dur,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
