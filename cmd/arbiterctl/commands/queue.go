package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

var (
	queueFormat string
	queueLimit  int
)

// QueueCmd выводит отзывы, ожидающие модерации.
var QueueCmd = &cobra.Command{
	Use:     "queue",
	Aliases: []string{"q"},
	Short:   "Показать очередь модерации отзывов",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), cfg, func(store repository.RecordStore) error {
			// Только чтение: оценщик и события не нужны.
			reviews := service.NewReviewService(store, nil, events.Nop{}, service.ReviewConfig{})
			defer reviews.Close()

			queue, err := reviews.ModerationQueue(cmd.Context())
			if err != nil {
				return err
			}
			if queueLimit > 0 && len(queue) > queueLimit {
				queue = queue[:queueLimit]
			}

			if queueFormat == "json" {
				return printJSON(cmd.OutOrStdout(), queue)
			}
			return printQueue(cmd.OutOrStdout(), queue)
		})
	},
}

func printQueue(out io.Writer, queue []models.Review) error {
	if len(queue) == 0 {
		fmt.Fprintln(out, "Очередь модерации пуста")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tRATING\tFLAGS\tSCORE\tTITLE")
	for _, r := range queue {
		score := "-"
		flags := 0
		if r.Moderation != nil {
			if r.Moderation.AIScore != nil {
				score = fmt.Sprintf("%.2f", *r.Moderation.AIScore)
			}
			flags = r.UnresolvedFlags()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", r.ID, r.Status, r.Rating, flags, score, truncate(r.Title, 40))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}

func init() {
	QueueCmd.Flags().StringVarP(&queueFormat, "format", "f", "table", "формат вывода: table или json")
	QueueCmd.Flags().IntVarP(&queueLimit, "limit", "n", 0, "максимум записей (0 без ограничения)")
}
