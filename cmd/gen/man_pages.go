package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/luma/topicsender/internal/meta"
)

var (
	manDir string
)

var ManPagesCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man pages for topicsender",
	Long: `Generate up-to-date man pages for every topicsender command.
By default the pages are written to the "man" directory under the
current directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		header := &doc.GenManHeader{
			Section: "1",
			Manual:  "topicsender Manual",
			Source:  fmt.Sprintf("topicsender %s", meta.Version),
		}

		dir := manDir
		if !strings.HasSuffix(dir, string(filepath.Separator)) {
			dir += string(filepath.Separator)
		}

		if _, err := os.Stat(dir); err != nil && os.IsNotExist(err) {
			fmt.Fprintln(out, "Directory", dir, "does not exist, creating...")
			if err := os.MkdirAll(dir, 0750); err != nil {
				return err
			}
		}

		cmd.Root().DisableAutoGenTag = true

		fmt.Fprintln(out, "Generating topicsender man pages in", dir, "...")

		if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
			return err
		}

		fmt.Fprintln(out, "Done.")

		return nil
	},
}

func init() {
	flags := ManPagesCmd.PersistentFlags()

	flags.StringVar(&manDir, "dir", "man/", "the directory to write the man pages.")

	// For bash-completion
	if err := flags.SetAnnotation("dir", cobra.BashCompSubdirsInDir, []string{}); err != nil {
		panic(err)
	}
}
