package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/api"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	Run: func(cmd *cobra.Command, args []string) {
		info := api.GetVersionInfo()
		fmt.Printf("sicbo engine version %s\n", info.EngineVersion)
		fmt.Printf("Commit: %s\n", info.GitCommit)
		fmt.Printf("Build time: %s\n", info.BuildTime)
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
