package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/lifedash/internal/models"
)

func (c *Cli) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage work tasks",
	}

	var date string
	var ongoing bool
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task for today or --date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.app.Data().AddTask(cmd.Context(), args[0], date, ongoing)
			if err != nil {
				return err
			}
			c.io.Printf("✓ Task added: %s (%s)\n", task.ID, task.Date)
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "task date YYYY-MM-DD (default today)")
	add.Flags().BoolVar(&ongoing, "ongoing", false, "carry the task over to the next day")

	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Data().CompleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.io.Printf("✓ Task %s done\n", args[0])
			return nil
		},
	}

	var off bool
	markOngoing := &cobra.Command{
		Use:   "ongoing <id>",
		Short: "Mark a task as ongoing (or --off to clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Data().SetTaskOngoing(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			c.io.Printf("✓ Task %s ongoing=%t\n", args[0], !off)
			return nil
		},
	}
	markOngoing.Flags().BoolVar(&off, "off", false, "clear the ongoing flag")

	cmd.AddCommand(add, done, markOngoing)
	return cmd
}

func (c *Cli) newExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record expenses in the current month ledger",
	}

	var category, note string
	add := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			expense, err := c.app.Data().AddExpense(cmd.Context(), amount, category, note)
			if err != nil {
				return err
			}
			c.io.Printf("✓ Expense %s %s added (%s)\n", expense.Amount.StringFixed(2), expense.Category, expense.ID)
			return nil
		},
	}
	add.Flags().StringVar(&category, "category", "", "expense category")
	add.Flags().StringVar(&note, "note", "", "free-form note")

	cmd.AddCommand(add)
	return cmd
}

func (c *Cli) newBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget <amount>",
		Short: "Set the budget of the current month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Data().SetBudget(cmd.Context(), amount); err != nil {
				return err
			}
			c.io.Printf("✓ Budget set to %s\n", amount.StringFixed(2))
			return nil
		},
	}
}

func (c *Cli) newHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage daily habits",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habit, err := c.app.Data().AddHabit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.io.Printf("✓ Habit added: %s (%s)\n", habit.Name, habit.ID)
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip today's completion of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			completed, err := c.app.Data().ToggleHabit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.io.Printf("✓ Habit %s completed=%t\n", args[0], completed)
			return nil
		},
	}

	cmd.AddCommand(add, toggle)
	return cmd
}

func (c *Cli) newHydrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hydrate <ml>",
		Short: "Log water intake for today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ml, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			total, err := c.app.Data().LogHydration(cmd.Context(), ml)
			if err != nil {
				return err
			}
			c.io.Printf("✓ Hydration today: %d ml\n", total)
			return nil
		},
	}
}

func (c *Cli) newWorkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Track workout sessions",
	}

	var minutes int
	done := &cobra.Command{
		Use:   "done [name]",
		Short: "Record a completed workout (default: the selected session)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			session, err := c.app.Data().CompleteWorkout(cmd.Context(), name, minutes)
			if err != nil {
				return err
			}
			c.io.Printf("✓ Workout %q recorded (%d min)\n", session.Name, session.DurationMin)
			return nil
		},
	}
	done.Flags().IntVar(&minutes, "minutes", 30, "workout duration in minutes")

	cmd.AddCommand(done)
	return cmd
}

func (c *Cli) newSleepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Keep the sleep log",
	}

	var entry models.SleepEntry
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Record a night's sleep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Data().LogSleep(cmd.Context(), entry); err != nil {
				return err
			}
			c.io.Println("✓ Sleep logged")
			return nil
		},
	}
	logCmd.Flags().StringVar(&entry.Date, "date", "", "night date YYYY-MM-DD (default today)")
	logCmd.Flags().StringVar(&entry.Bedtime, "bed", "23:00", "bedtime HH:MM")
	logCmd.Flags().StringVar(&entry.WakeTime, "wake", "07:00", "wake time HH:MM")
	logCmd.Flags().IntVar(&entry.Quality, "quality", 3, "quality 1..5")

	cmd.AddCommand(logCmd)
	return cmd
}

func (c *Cli) newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change user settings",
	}

	var dailyReset bool
	var retention, theme string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update settings given by flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("daily-reset") && !flags.Changed("retention") && !flags.Changed("theme") {
				return fmt.Errorf("nothing to change: pass --daily-reset, --retention or --theme")
			}

			err := c.app.Data().UpdateSettings(cmd.Context(), func(s *models.Settings) error {
				if flags.Changed("daily-reset") {
					s.DailyResetEnabled = dailyReset
				}
				if flags.Changed("retention") {
					s.RetentionPolicy = models.RetentionPolicy(retention)
				}
				if flags.Changed("theme") {
					s.Theme = theme
				}
				return nil
			})
			if err != nil {
				return err
			}
			c.io.Println("✓ Settings updated")
			return nil
		},
	}
	set.Flags().BoolVar(&dailyReset, "daily-reset", true, "enable the full daily reset")
	set.Flags().StringVar(&retention, "retention", "", "history retention: all, 1year, 90days, 30days")
	set.Flags().StringVar(&theme, "theme", "", "interface theme")

	cmd.AddCommand(set)
	return cmd
}
