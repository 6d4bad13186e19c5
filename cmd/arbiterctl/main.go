// Command arbiterctl обслуживает сервис арбитража из консоли.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-arbitration/cmd/arbiterctl/commands"
)

var rootCmd = &cobra.Command{
	Use:   "arbiterctl",
	Short: "Администрирование сервиса споров и модерации отзывов",
	Long: `arbiterctl работает с тем же хранилищем, что и сервер, и читает ту же
конфигурацию из окружения и .env.

Команды:
  - migrate    применить миграции Postgres
  - queue      показать очередь модерации отзывов
  - analytics  вывести сводку по спорам и отзывам
  - token      выпустить access токен для отладки`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.QueueCmd)
	rootCmd.AddCommand(commands.AnalyticsCmd)
	rootCmd.AddCommand(commands.TokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
