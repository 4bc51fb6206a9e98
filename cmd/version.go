package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/version"
)

var (
	versionShort     bool
	versionGenerator bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print exmachina version",
	RunE:  runVersion,
}

func runVersion(_ *cobra.Command, _ []string) error {
	return writeVersion(os.Stdout, versionShort, versionGenerator)
}

// writeVersion prints the full build string, the bare version, or the
// generator meta content that rendered pages carry.
func writeVersion(w io.Writer, short, generator bool) error {
	var line string
	switch {
	case short && generator:
		return errors.New("--short and --generator cannot be combined")
	case short:
		line = version.Short()
	case generator:
		line = version.Generator()
	default:
		line = "exmachina " + version.Full()
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	versionCmd.Flags().BoolVar(&versionGenerator, "generator", false, "Print the generator meta content")
}
