package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reservationapi/config"
	"reservationapi/pkg/logger"
	"reservationapi/storage/database"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "reservation-admin",
		Short:         "Maintenance commands for the reservation API database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.Init()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print structured logs")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reservation-admin %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}

// openDB 管理命令自己决定是否迁移，这里关掉启动时的自动迁移
func openDB() error {
	config.Cfg.DBAutoMigrate = false
	return database.Init()
}

func closeDB() {
	_ = database.Close(context.Background())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
