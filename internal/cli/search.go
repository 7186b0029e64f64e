package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zephyraoss/offline-finder/internal/present"
	"github.com/zephyraoss/offline-finder/internal/search"
	"github.com/zephyraoss/offline-finder/internal/store"
)

func newSearchCmd(f *rootFlags) *cobra.Command {
	var (
		req    search.Request
		auto   bool
		asJSON bool
	)
	c := &cobra.Command{
		Use:   "search [query]",
		Short: "Run one search and print the matching page",
		Long: `Run one search against the records database.

The positional query is a substring match over surname, given name, employer
and residence. --phone treats it as a phone number instead, --fts runs a
full-text match, and --auto picks between them the way the UI does.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Query = args[0]
			}
			if auto {
				req = req.Prepare()
			}

			d, err := f.build(c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer d.provider.Close()

			res, err := d.searcher.Search(c.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printTable(c.OutOrStdout(), res, req)
		},
	}
	c.Flags().StringVar(&req.FTS, "fts", "", "Full-text expression (FTS5 syntax)")
	c.Flags().BoolVar(&req.IsPhone, "phone", false, "Treat the query as a phone number")
	c.Flags().StringVar(&req.Sex, "sex", "", "Exact sex value")
	c.Flags().StringVar(&req.Residence, "residence", "", "Residence contains")
	c.Flags().Int64Var(&req.Page, "page", 1, "Page number, 1-based")
	c.Flags().Int64Var(&req.PageSize, "page-size", 50, "Rows per page")
	c.Flags().BoolVar(&auto, "auto", false, "Detect phone numbers and build a prefix full-text query from the input")
	c.Flags().BoolVar(&asJSON, "json", false, "Print {total, rows} as JSON")
	return c
}

func printTable(w io.Writer, res store.Result, req search.Request) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tSEX\tRESIDENCE\tBORN\tEMPLOYER")
	for _, r := range res.Rows {
		name := strings.TrimSpace(text(r.GivenName) + " " + text(r.FamilyName))
		born := strings.TrimSpace(text(r.BirthPlace) + " " + present.ParseBirth(text(r.Reserved2)).DOB)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, name, present.DisplayPhone(text(r.Phone)), text(r.Sex), text(r.Residence), born, text(r.Employer))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	limit, _ := search.Paginate(req.Page, req.PageSize)
	pages := res.Total / limit
	if res.Total%limit != 0 {
		pages++
	}
	page := max(req.Page, 1)
	_, err := fmt.Fprintf(w, "\n%d results (%s), page %d of %d\n", res.Total, res.Strategy, page, max(pages, 1))
	return err
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
