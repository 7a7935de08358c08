package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fedscout/fedscout/internal/ingest"
	"github.com/fedscout/fedscout/internal/persistence/postgres"
)

func ingestCmd(ctx context.Context) *cobra.Command {
	var (
		naicsCodes    []string
		noticeTypes   []string
		setAsideCodes []string
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one SAM.gov ingestion pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			timeout := cfg.Database.QueryTimeout
			opps := postgres.NewOpportunityRepo(db, timeout)
			logs := postgres.NewIngestionLogRepo(db, timeout)
			client := ingest.NewSAMClient(cfg.Feed.SAMAPIKey, log.Logger)
			runner := ingest.NewService(client, opps, logs, log.Logger)

			job, err := runner.Enqueue(ctx)
			if err != nil {
				return err
			}
			q := ingest.Query{
				NAICSCodes:    naicsCodes,
				NoticeTypes:   noticeTypes,
				SetAsideCodes: setAsideCodes,
				Limit:         limit,
			}
			if err := runner.Run(ctx, job, q); err != nil {
				return err
			}

			fmt.Printf("job %s: fetched=%d inserted=%d updated=%d failed=%d\n",
				job.ID, job.RecordsFetched, job.RecordsInserted, job.RecordsUpdated, job.RecordsFailed)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&naicsCodes, "naics", nil, "NAICS codes to filter the feed")
	cmd.Flags().StringSliceVar(&noticeTypes, "ptype", nil, "notice type codes to filter the feed")
	cmd.Flags().StringSliceVar(&setAsideCodes, "set-aside", nil, "set-aside codes to filter the feed")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to fetch (0 uses the feed default)")
	return cmd
}
