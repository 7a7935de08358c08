package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func scoreCmd(ctx context.Context) *cobra.Command {
	var (
		withRisk bool
		withWin  bool
	)

	cmd := &cobra.Command{
		Use:   "score <organization-id> <opportunity-id>",
		Short: "Score one organization against one opportunity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid organization id: %w", err)
			}
			oppID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid opportunity id: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := buildScoringService(cfg, db)
			if err != nil {
				return err
			}

			out := map[string]interface{}{}
			score, err := svc.CalculateRelevance(ctx, orgID, oppID)
			if err != nil {
				return err
			}
			out["relevance"] = score

			if withRisk {
				assessment, err := svc.AssessRisk(ctx, orgID, oppID)
				if err != nil {
					return err
				}
				out["risk"] = assessment
			}
			if withWin {
				prediction, err := svc.PredictWin(ctx, orgID, oppID)
				if err != nil {
					return err
				}
				out["win_probability"] = prediction
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&withRisk, "risk", false, "also run the risk assessment")
	cmd.Flags().BoolVar(&withWin, "win", false, "also compute win probability")
	return cmd
}
