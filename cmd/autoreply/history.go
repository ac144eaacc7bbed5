package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/database"
	"github.com/edgard/autoreply/internal/logger"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.LoadDotEnv(opts.envFiles...); err != nil {
				return fmt.Errorf("failed to load environment files: %w", err)
			}

			// --db-path wins when given; otherwise database.path comes from
			// the config file or environment like it does for the bot.
			dbCfg, err := config.LoadDatabaseConfig(opts.configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.NewDB(dbCfg.Path)
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			defer database.CloseDB(db)

			store := database.NewStore(db, logger.Discard())
			exchanges, err := store.RecentExchanges(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printExchanges(cmd.OutOrStdout(), exchanges)
		},
	}

	cmd.Flags().String("db-path", config.DefaultDBPath, "Reply journal database path (overrides database.path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to print")
	return cmd
}

func printExchanges(w io.Writer, exchanges []database.Exchange) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMESSAGE\tAUTHOR\tSENT\tREPLY\tERROR")
	for _, ex := range exchanges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			ex.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			ex.MessageID,
			ex.AuthorID,
			ex.Sent,
			logger.Preview(ex.Reply, 60),
			logger.Preview(ex.Error, 40),
		)
	}
	return tw.Flush()
}
