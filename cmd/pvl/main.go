// Command pvl converts and checks PVL family labels.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pvl "github.com/planetarypy/go-pvl"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pvl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pvl",
		Short:         "pvl reads, checks and converts PVL/ODL/PDS3/ISIS labels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newTranslateCmd(), newValidateCmd())
	return cmd
}

func newTranslateCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "parse a label and re-emit it in another dialect",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDialect, err := pvl.ParseDialect(from)
			if err != nil {
				return err
			}
			toDialect, err := pvl.ParseDialect(to)
			if err != nil {
				return err
			}
			data, err := readInput(args)
			if err != nil {
				return err
			}
			m, err := pvl.Parse(data, pvl.WithDialect(fromDialect))
			if err != nil {
				return err
			}
			out, err := pvl.Encode(m, pvl.WithDialect(toDialect))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "Omni", "dialect to parse with (Omni, PVL, ODL, PDS3, ISIS)")
	cmd.Flags().StringVar(&to, "to", "PVL", "dialect to emit (PVL, ODL, PDS3, ISIS)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var dialect string
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "strictly parse labels and report errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pvl.ParseDialect(dialect)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			failed := false
			for _, name := range args {
				data, err := readInput([]string{name})
				if err != nil {
					return err
				}
				if _, err := pvl.Parse(data, pvl.WithDialect(d), pvl.Strict()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
					failed = true
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			}
			if failed {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "PVL", "dialect to validate against")
	return cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
