package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fixerhub/config"
	"fixerhub/cron"
	"fixerhub/database"
	"fixerhub/database/repository"
	"fixerhub/models"
	"fixerhub/services/admin"
	"fixerhub/services/certification"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "fixerctl",
		Short:   "Operator commands for the FixerHub API",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
		},
	}

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(promoteCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connect() (repository.Repositories, func()) {
	database.InitDB()
	return repository.NewMongoRepositories(database.DB()), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Disconnect(ctx)
	}
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute provider certification scores",
		Long: `Recompute every provider's certification points, counters and level from
their approved certifications. With --queue the job is handed to the task worker instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queued, _ := cmd.Flags().GetBool("queue")
			if queued {
				client := asynq.NewClient(cron.RedisOpt())
				defer client.Close()
				id, err := (&admin.DefaultAdminService{Queue: client}).TriggerReconcile(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("Queued reconciliation task %s\n", id)
				return nil
			}

			repos, closeDB := connect()
			defer closeDB()
			svc := &certification.DefaultCertificationService{
				Repo:  repos.Certifications,
				Users: repos.Users,
			}
			changed, err := svc.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d provider(s)\n", changed)
			return nil
		},
	}

	cmd.Flags().BoolP("queue", "q", false, "Queue the job for the task worker")

	return cmd
}

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote [email]",
		Short: "Give an existing account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, closeDB := connect()
			defer closeDB()
			ctx := cmd.Context()
			u, err := repos.Users.GetByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			if u.IsAdmin() {
				fmt.Printf("%s is already an admin\n", u.Email)
				return nil
			}
			if err := repos.Users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
				return err
			}
			fmt.Printf("Promoted %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print platform counts by role and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, closeDB := connect()
			defer closeDB()
			svc := &admin.DefaultAdminService{
				Users:          repos.Users,
				Bookings:       repos.Bookings,
				Certifications: repos.Certifications,
				Disputes:       repos.Disputes,
			}
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
