package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/claude/trainday/internal/app"
	"github.com/claude/trainday/internal/models"
	"github.com/claude/trainday/internal/training"
)

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Migrate(cmd.Context(), o.cfg, o.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd(o *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the exercise catalog into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if force {
				o.cfg.Engine.SeedCatalog = true
			}
			if _, err := o.service(cmd.Context()); err != nil {
				return err
			}
			n, err := o.app.Store.CountExercises(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog has %d exercises\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upsert the catalog even when the store already has one")
	return cmd
}

func newStateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show rotation, week mode, cooldown and power state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			st, err := svc.State(cmd.Context())
			if err != nil {
				return err
			}
			return o.render(cmd.OutOrStdout(), st, func(w io.Writer) { formatState(w, st) })
		},
	}
}

// addCheckInFlags registers the questionnaire answers on fs. Defaults
// describe a normal day with a full kettlebell set.
func addCheckInFlags(fs *pflag.FlagSet, q *models.Questionnaire) {
	fs.StringVar((*string)(&q.Feeling), "feeling", string(models.FeelingOK), "bad, ok or great")
	fs.StringVar((*string)(&q.Sleep), "sleep", string(models.SleepGood), "bad or good")
	fs.StringVar((*string)(&q.Pain), "pain", string(models.PainNone), "none or present")
	fs.StringVar((*string)(&q.TimeAvailable), "time", string(models.Slot30to45), "20-30, 30-45 or 45-60")
	fs.StringVar((*string)(&q.Equipment), "equipment", string(models.EquipmentHome), "home, minimal or bodyweight")
	fs.StringVar((*string)(&q.OverrideBucket), "bucket", "", "Force the priority bucket: squat, pull, hinge or push")
}

func newGenerateCmd(o *options) *cobra.Command {
	var q models.Questionnaire

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's session from the check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.Generate(cmd.Context(), q)
			if err != nil {
				return err
			}
			return o.render(cmd.OutOrStdout(), s, func(w io.Writer) { formatSession(w, s) })
		},
	}

	addCheckInFlags(cmd.Flags(), &q)
	return cmd
}

func newRerollCmd(o *options) *cobra.Command {
	var req training.RerollRequest

	cmd := &cobra.Command{
		Use:   "reroll",
		Short: "Generate an alternative session for the same check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.Reroll(cmd.Context(), req)
			if err != nil {
				return err
			}
			return o.render(cmd.OutOrStdout(), s, func(w io.Writer) { formatSession(w, s) })
		},
	}

	addCheckInFlags(cmd.Flags(), &req.Questionnaire)
	cmd.Flags().StringVar((*string)(&req.PreserveDayType), "keep-day-type", "", "Keep this day type: easy, medium or hard")
	cmd.Flags().StringVar((*string)(&req.PreservePriorityBucket), "keep-bucket", "", "Keep this priority bucket")
	return cmd
}

func parseSessionID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: session id %q", models.ErrInvalidInput, s)
	}
	return id, nil
}

func newSwapCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "swap <session-id> <exercise-id>",
		Short: "Replace one exercise in an open session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.Swap(cmd.Context(), training.SwapRequest{SessionID: id, ExerciseID: args[1]})
			if err != nil {
				return err
			}
			return o.render(cmd.OutOrStdout(), s, func(w io.Writer) { formatSession(w, s) })
		},
	}
}

func newCompleteCmd(o *options) *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Mark a session as done and advance the rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Complete(cmd.Context(), id, models.Feedback(feedback))
			if err != nil {
				return err
			}
			return o.render(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "Session %s completed. Next priority: %s\n", res.SessionID, res.NextPriorityBucket)
				formatState(w, res.State)
			})
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", string(models.FeedbackGood), "good or not_good")
	return cmd
}

func newHistoryCmd(o *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("%w: limit must be positive", models.ErrInvalidInput)
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			sessions, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if sessions == nil {
				sessions = []models.Session{}
			}
			return o.render(cmd.OutOrStdout(), sessions, func(w io.Writer) { formatHistory(w, sessions) })
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum sessions to show (default 10)")
	return cmd
}

func newExercisesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exercises [category]",
		Short: "List catalog exercises",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var category models.Category
			if len(args) == 1 {
				category = models.Category(args[0])
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			exercises, err := svc.Exercises(cmd.Context(), category)
			if err != nil {
				return err
			}
			return o.render(cmd.OutOrStdout(), exercises, func(w io.Writer) { formatExercises(w, exercises) })
		},
	}
}

func newResetCmd(o *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all sessions and reset the training state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every session; pass --yes to confirm")
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "state reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
