package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd prints build details of the binary.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the leadtime version and build details.",
	Long: `Print the release, commit and build date of this binary
together with the Go toolchain and platform it was built for.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("leadtime %s\n", version)
		cmd.Printf("  commit:   %s\n", commit)
		cmd.Printf("  built:    %s\n", date)
		cmd.Printf("  go:       %s\n", runtime.Version())
		cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
