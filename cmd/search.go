package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-export/internal/export"
	"github.com/sells-group/lead-export/internal/leads"
	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/internal/server"
	"github.com/sells-group/lead-export/internal/store"
)

type searchOptions struct {
	Query  leads.Query
	Format string
	Output string
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a lead search and print or save the results",
	Example: `  lead-export search --keywords "ux designer" --location "Austin, TX"
  lead-export search --keywords designer --target-count 500 --format csv --output leads.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("search"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			zap.L().Warn("search: history store unavailable", zap.Error(err))
			st = nil
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		return runSearch(ctx, newFetcher(), st, searchOpts, os.Stdout)
	},
}

// runSearch executes one search and writes the results to opts.Output, or
// to stdout when no output path is set.
func runSearch(ctx context.Context, f server.LeadFetcher, st store.Store, opts searchOptions, stdout io.Writer) error {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "json" {
		if _, err := export.ParseFormat(format); err != nil {
			return eris.Errorf("search: unsupported format %q (json, csv, xlsx)", opts.Format)
		}
	}

	q, err := opts.Query.Normalize()
	if err != nil {
		return err
	}

	result, stats, err := f.FetchLeadsWithStats(ctx, q)
	if err != nil {
		return eris.Wrap(err, "search")
	}

	if st != nil {
		err := st.RecordSearch(ctx, &model.SearchRun{
			Keywords:    q.Keywords,
			Location:    q.Location,
			TargetCount: q.TargetCount,
			PageSize:    q.PageSize,
			Source:      model.SearchSourceCLI,
			LeadCount:   len(result),
			Pages:       stats.Pages,
			DurationMs:  stats.Duration.Milliseconds(),
		})
		if err != nil {
			zap.L().Warn("search: record history failed", zap.Error(err))
		}
	}

	out := stdout
	if opts.Output != "" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return eris.Wrap(err, "search: create output file")
		}
		defer file.Close() //nolint:errcheck
		out = file
	}

	if err := writeLeads(out, format, result); err != nil {
		return err
	}

	if opts.Output != "" {
		zap.L().Info("search: results written",
			zap.String("path", opts.Output),
			zap.Int("leads", len(result)),
		)
	}
	return nil
}

// writeLeads renders leads as indented JSON or via the export package.
func writeLeads(w io.Writer, format string, result []model.Lead) error {
	if result == nil {
		result = []model.Lead{}
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "search: encode json")
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, f, result)
}

func init() {
	searchCmd.Flags().StringVar(&searchOpts.Query.Keywords, "keywords", "", "search keywords (required)")
	searchCmd.Flags().StringVar(&searchOpts.Query.Location, "location", "", "optional person location filter")
	searchCmd.Flags().IntVar(&searchOpts.Query.TargetCount, "target-count", leads.DefaultTargetCount, "number of leads to collect (max 1000)")
	searchCmd.Flags().IntVar(&searchOpts.Query.PageSize, "page-size", leads.DefaultPageSize, "upstream page size (max 200)")
	searchCmd.Flags().StringVar(&searchOpts.Format, "format", "json", "output format: json, csv, xlsx")
	searchCmd.Flags().StringVarP(&searchOpts.Output, "output", "o", "", "write results to a file instead of stdout")
	_ = searchCmd.MarkFlagRequired("keywords")
	rootCmd.AddCommand(searchCmd)
}
