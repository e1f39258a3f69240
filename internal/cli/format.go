package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/claude/trainday/internal/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// prescription joins the non-empty template fields, e.g. "3 x 5, rest 90s".
func prescription(t models.Template) string {
	var parts []string
	switch {
	case t.Sets != "" && t.Reps != "":
		parts = append(parts, t.Sets+" x "+t.Reps)
	case t.Sets != "" && t.HoldTime != "":
		parts = append(parts, t.Sets+" x "+t.HoldTime)
	case t.Sets != "":
		parts = append(parts, t.Sets+" sets")
	}
	if t.Time != "" {
		parts = append(parts, t.Time)
	}
	if t.Tempo != "" {
		parts = append(parts, "tempo "+t.Tempo)
	}
	if t.Rest != "" {
		parts = append(parts, "rest "+t.Rest)
	}
	return strings.Join(parts, ", ")
}

func formatSession(w io.Writer, s models.Session) {
	fmt.Fprintf(w, "Session %s\n", s.ID)
	fmt.Fprintf(w, "Day: %s   Priority: %s   Week: %s   Time: %s   Equipment: %s\n",
		s.DayType, s.PriorityBucket, s.WeekMode, s.TimeSlot, s.Equipment)
	if s.IsReroll {
		fmt.Fprintln(w, "(reroll)")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, ex := range s.Exercises {
		fmt.Fprintf(tw, "%d.\t%s\t[%s]\t%s\t%s\t%s\n", i+1, ex.Name, ex.Category, ex.LoadLevel, prescription(ex.Template), ex.Notes)
	}
	tw.Flush()

	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}
}

func formatState(w io.Writer, st models.UserState) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Next priority:\t%s\n", st.NextPriorityBucket)
	fmt.Fprintf(tw, "Week mode:\t%s (since %s)\n", st.WeekMode, st.WeekModeLastChanged.Format("2006-01-02"))
	fmt.Fprintf(tw, "Cooldown:\t%d\n", st.CooldownCounter)
	fmt.Fprintf(tw, "Override next:\t%v\n", st.CooldownOverride)
	power := "never"
	if st.PowerLastUsed != nil {
		power = st.PowerLastUsed.Format("2006-01-02")
	}
	fmt.Fprintf(tw, "Power:\t%s, last %s\n", st.PowerFrequency, power)
	fmt.Fprintf(tw, "Last hard day:\t%v\n", st.LastHardDay)
	tw.Flush()
}

func formatHistory(w io.Writer, sessions []models.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No completed sessions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tPRIORITY\tFEEDBACK\tEXERCISES")
	for _, s := range sessions {
		feedback := "-"
		if s.Feedback != nil {
			feedback = string(*s.Feedback)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.CreatedAt.Format("2006-01-02"), s.DayType, s.PriorityBucket, feedback, strings.Join(s.ExerciseIDs(), ", "))
	}
	tw.Flush()
}

func formatExercises(w io.Writer, exercises []models.Exercise) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tEQUIPMENT\tTYPE")
	for _, ex := range exercises {
		eq := make([]string, len(ex.Equipment))
		for i, e := range ex.Equipment {
			eq[i] = string(e)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ex.ID, ex.Name, ex.Category, strings.Join(eq, ","), ex.PrescriptionType)
	}
	tw.Flush()
}
