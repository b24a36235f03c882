package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show store location, size and dimension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			label := color.New(color.FgCyan)
			label.Fprint(w, "dir:     ")
			fmt.Fprintln(w, s.Dir())
			label.Fprint(w, "backend: ")
			fmt.Fprintln(w, s.Backend().Name())
			label.Fprint(w, "rows:    ")
			fmt.Fprintln(w, humanize.Comma(int64(s.Len())))
			label.Fprint(w, "dim:     ")
			fmt.Fprintln(w, s.Dim())
			for _, path := range s.Backend().Paths() {
				st, err := os.Stat(path)
				switch {
				case errors.Is(err, fs.ErrNotExist):
					fmt.Fprintf(w, "  %s  (not written yet)\n", path)
				case err != nil:
					return err
				default:
					fmt.Fprintf(w, "  %s  %s, modified %s\n", path, humanize.Bytes(uint64(st.Size())), humanize.Time(st.ModTime()))
				}
			}
			return nil
		},
	}
}
