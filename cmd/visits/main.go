package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmarks/kurz/internal/visits"
	visitstore "github.com/nmarks/kurz/internal/visits/store"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	startDate   string
	endDate     string
)

var rootCmd = &cobra.Command{
	Use:   "visits <short-code>",
	Short: "List the visits recorded for a short URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dateRange, err := parseDateRange(startDate, endDate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		list, err := visitstore.NewPostgres(pool).List(ctx, args[0], dateRange)
		if err != nil {
			return fmt.Errorf("listing visits: %w", err)
		}

		printVisits(cmd.OutOrStdout(), list)

		return nil
	},
}

func parseDateRange(start, end string) (visits.DateRange, error) {
	var dateRange visits.DateRange

	if start != "" {
		since, err := parseDate(start)
		if err != nil {
			return dateRange, fmt.Errorf("invalid start date %q: %w", start, err)
		}

		dateRange.Since = &since
	}

	if end != "" {
		until, err := parseDate(end)
		if err != nil {
			return dateRange, fmt.Errorf("invalid end date %q: %w", end, err)
		}

		dateRange.Until = &until
	}

	return dateRange, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", value)
}

func printVisits(out io.Writer, list []visits.Visit) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "REFERER\tDATE\tREMOTE ADDRESS\tUSER AGENT")

	for _, visit := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			visit.Referer,
			visit.VisitedAt.Format(time.RFC3339),
			visit.RemoteAddr,
			visit.UserAgent,
		)
	}

	w.Flush()
}

func main() {
	rootCmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	rootCmd.Flags().StringVar(&startDate, "start-date", "", "Only include visits on or after this date")
	rootCmd.Flags().StringVar(&endDate, "end-date", "", "Only include visits on or before this date")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
