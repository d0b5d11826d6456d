package cmd

import (
	"fmt"

	"melodify/db"
	"melodify/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新数据库表结构",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		gormDB, err := db.ConnectGorm(cfg)
		if err != nil {
			return err
		}
		defer db.CloseGorm(gormDB)

		if err := db.AutoMigrate(gormDB); err != nil {
			return err
		}
		fmt.Printf("Migrated %d tables in %s\n", len(db.Models()), cfg.DBName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
