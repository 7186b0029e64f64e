package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zephyraoss/offline-finder/internal/dbpath"
)

func newLocateCmd(f *rootFlags) *cobra.Command {
	var all bool
	c := &cobra.Command{
		Use:   "locate",
		Short: "Print the database path that would be opened",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			d, err := f.build(c.ErrOrStderr())
			if err != nil {
				return err
			}
			out := c.OutOrStdout()

			path := d.resolver.Resolve()
			fmt.Fprintf(out, "%s\t%s\n", path, existence(path))
			if !all {
				return nil
			}

			var exeDir, cwd string
			if exe, err := os.Executable(); err == nil {
				exeDir = filepath.Dir(exe)
			}
			if wd, err := os.Getwd(); err == nil {
				cwd = wd
			}
			fmt.Fprintln(out)
			for _, cand := range dbpath.Candidates(exeDir, cwd) {
				fmt.Fprintf(out, "  %s\t%s\n", cand, existence(cand))
			}
			return nil
		},
	}
	c.Flags().BoolVar(&all, "all", false, "Also list every candidate location probed")
	return c
}

func existence(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "missing"
	}
	return "found"
}
