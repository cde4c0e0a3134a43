package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mhollis/beacon"
	"github.com/mhollis/beacon/internal/config"
)

var (
	configPath string
	dryRun     bool
	cfg        *config.Config
)

func main() {
	// Secrets can live in a .env next to the binary; missing is fine.
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "beacon",
		Short: "Personal academic and financial notifier - Canvas deadlines and market news to Discord",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print messages instead of posting to Discord")

	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(dailyBriefCmd())
	rootCmd.AddCommand(newsCmd())
	rootCmd.AddCommand(weeklyCmd())
	rootCmd.AddCommand(studyCmd())
	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync Canvas and post deadline alerts and the study plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			report, err := engine.RunSync(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d tasks and %d announcements from %d courses, posted %d alerts\n",
				report.TasksSynced, report.AnnouncementsSynced, report.CoursesSynced, report.AlertsPosted)
			for _, e := range report.Errors {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", e)
			}
			return nil
		},
	}
}

func dailyBriefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily-brief",
		Short: "Post the Today/Tomorrow/This Week academic brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			report, err := engine.RunDailyBrief(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Daily brief posted: %d today, %d tomorrow, %d this week\n",
				report.Today, report.Tomorrow, report.ThisWeek)
			return nil
		},
	}
}

func newsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Poll feeds and post high-impact news to channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			report, err := engine.RunNews(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Fetched %d items, posted %d news, %d earnings, %d macro, %d analyst prompts\n",
				report.ItemsFetched, report.ItemsPosted, report.EarningsPosted, report.MacroPosted, report.PromptsPosted)
			return nil
		},
	}
}

func weeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Post the weekly activity summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			report, err := engine.RunWeekly(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Weekly report posted: %d events tracked, %d active tasks, %d alerts this week\n",
				report.TotalEvents, report.ActiveTasks, report.AlertsThisWeek)
			return nil
		},
	}
}

func studyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Track study sessions, classes, and the streak",
	}
	cmd.AddCommand(studyLogCmd())
	cmd.AddCommand(studyStreakCmd())
	cmd.AddCommand(studyStatsCmd())
	cmd.AddCommand(studyClassCmd())
	return cmd
}

func studyLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <class> <minutes>",
		Short: "Log a study session for today",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil || minutes <= 0 {
				return fmt.Errorf("invalid minutes: %q", args[1])
			}

			engine := beacon.NewEngine(cfg, dryRun)
			session, err := engine.LogStudy(args[0], minutes)
			if err != nil {
				return err
			}

			streak, err := engine.StudyStreak()
			if err != nil {
				return err
			}
			fmt.Printf("Logged %d minutes for %s. Streak: %d days (best: %d)\n",
				session.Minutes, session.Class, streak.Current, streak.Best)
			return nil
		},
	}
}

func studyStreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current study streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			streak, err := engine.StudyStreak()
			if err != nil {
				return err
			}
			if streak.Current == 0 {
				fmt.Printf("No active streak (best: %d days)\n", streak.Best)
				return nil
			}
			fmt.Printf("🔥 %d day streak (best: %d), last studied %s\n",
				streak.Current, streak.Best, streak.LastStudyDate)
			return nil
		},
	}
}

func studyStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the trailing week's study stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)

			today := engine.StudyToday()
			if today.Sessions > 0 {
				fmt.Printf("Today: %d minutes in %d sessions (%s)\n",
					today.TotalMinutes, today.Sessions, strings.Join(today.Classes, ", "))
			}

			stats := engine.StudyStats()
			fmt.Printf("Last 7 days: %d minutes across %d sessions (%d days, avg %.0f min/day)\n",
				stats.TotalMinutes, stats.TotalSessions, stats.DaysStudied, stats.AvgPerDay)
			for class, cs := range stats.ByClass {
				fmt.Printf("  %s: %d minutes in %d sessions\n", class, cs.Minutes, cs.Sessions)
			}
			if neglected := engine.NeglectedClasses(3); len(neglected) > 0 {
				fmt.Printf("Not studied in 3+ days: %s\n", strings.Join(neglected, ", "))
			}
			return nil
		},
	}
}

func studyClassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Manage tracked classes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register a class for tracking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			added, err := engine.AddClass(args[0])
			if err != nil {
				return err
			}
			if !added {
				fmt.Printf("Class %s is already tracked\n", strings.ToUpper(args[0]))
				return nil
			}
			fmt.Printf("Tracking %s\n", strings.ToUpper(args[0]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Stop tracking a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := beacon.NewEngine(cfg, dryRun)
			removed, err := engine.RemoveClass(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("class not tracked: %s", args[0])
			}
			fmt.Printf("Stopped tracking %s\n", strings.ToUpper(args[0]))
			return nil
		},
	})
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = "./config/config.yaml"
			}

			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}

			data, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			if err := os.WriteFile(configPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Printf("Created default config at %s\n", configPath)
			return nil
		},
	}
}
