package actionable

import (
	"fmt"

	"meeting-assistant-go/internal/aggregator"
)

// stressedThreshold is the share of Tense/Urgent meetings that warrants attention.
const stressedThreshold = 0.35

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Generate picks the one thing most worth a user's attention: overdue tasks
// first, then a run of tense meetings.
func Generate(ins aggregator.Insight) ActionCard {
	if ins.OverdueTasks > 0 {
		insight := fmt.Sprintf("%d pending task(s) past their deadline", ins.OverdueTasks)
		if ins.OldestOverdue != nil {
			insight += fmt.Sprintf(", oldest due %s", *ins.OldestOverdue)
		}
		return ActionCard{
			Insight: insight,
			Action:  "Review overdue tasks and complete or reschedule them",
			Impact:  "Keeps meeting commitments from slipping",
		}
	}
	if ins.TotalNotes > 0 && ins.StressedShare >= stressedThreshold {
		return ActionCard{
			Insight: fmt.Sprintf("%.0f%% of meetings were tense or urgent", ins.StressedShare*100),
			Action:  "Check the latest tense meetings for blockers and follow up with owners",
			Impact:  "Surfaces escalations before they grow",
		}
	}
	return ActionCard{
		Insight: "Nothing pressing",
		Action:  "Keep recording meetings",
		Impact:  "Low immediate intervention",
	}
}
