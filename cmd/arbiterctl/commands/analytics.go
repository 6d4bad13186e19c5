package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

var analyticsJSON bool

type analyticsReport struct {
	Disputes models.DisputeAnalytics `json:"disputes"`
	Reviews  models.ReviewAnalytics  `json:"reviews"`
}

// AnalyticsCmd выводит сводку по спорам и отзывам.
var AnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Сводка по спорам и отзывам",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), cfg, func(store repository.RecordStore) error {
			svc := service.NewAnalyticsService(store, store)
			var report analyticsReport
			if report.Disputes, err = svc.DisputeAnalytics(cmd.Context()); err != nil {
				return err
			}
			if report.Reviews, err = svc.ReviewAnalytics(cmd.Context()); err != nil {
				return err
			}

			if analyticsJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			return printAnalytics(cmd.OutOrStdout(), report)
		})
	},
}

func printAnalytics(out io.Writer, r analyticsReport) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "СПОРЫ")
	fmt.Fprintf(w, "  всего\t%d\n", r.Disputes.Total)
	for _, status := range models.AllDisputeStatuses {
		fmt.Fprintf(w, "  %s\t%d\n", status, r.Disputes.ByStatus[status])
	}
	fmt.Fprintf(w, "  среднее время решения, дней\t%.2f\n", r.Disputes.AverageResolutionDays)
	fmt.Fprintf(w, "  доля решённых\t%.2f\n", r.Disputes.ResolutionRate)

	fmt.Fprintln(w, "ОТЗЫВЫ")
	fmt.Fprintf(w, "  всего\t%d\n", r.Reviews.Total)
	fmt.Fprintf(w, "  средняя оценка\t%.2f\n", r.Reviews.AverageRating)
	for rating := 1; rating <= 5; rating++ {
		fmt.Fprintf(w, "  оценка %d\t%d\n", rating, r.Reviews.RatingDistribution[rating])
	}
	fmt.Fprintf(w, "  ждут модерации\t%d\n", r.Reviews.PendingCount)
	fmt.Fprintf(w, "  с жалобами\t%d\n", r.Reviews.FlaggedCount)
	fmt.Fprintf(w, "  доля одобренных\t%.2f\n", r.Reviews.ApprovalRate)

	return w.Flush()
}

func init() {
	AnalyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "вывести в формате JSON")
}
