package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/db"
)

var migrateDir string

// MigrateCmd применяет SQL миграции к базе Postgres.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции Postgres",
	Long:  `Применяет ещё не применённые файлы *.sql из каталога миграций по порядку имён.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver != config.StorePostgres {
			return fmt.Errorf("migrate: STORE_DRIVER=%s, миграции нужны только для %s", cfg.StoreDriver, config.StorePostgres)
		}
		dir := cfg.MigrationsPath
		if migrateDir != "" {
			dir = migrateDir
		}

		conn, err := db.NewPostgres(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		applied, err := db.RunMigrations(cmd.Context(), conn, dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintln(out, "Новых миграций нет")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(out, "применена %s\n", name)
		}
		return nil
	},
}

func init() {
	MigrateCmd.Flags().StringVar(&migrateDir, "dir", "", "каталог миграций (по умолчанию MIGRATIONS_PATH)")
}
