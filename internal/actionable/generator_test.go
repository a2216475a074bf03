package actionable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meeting-assistant-go/internal/aggregator"
)

func TestGenerate(t *testing.T) {
	oldest := "2026-02-10"
	tests := []struct {
		name        string
		ins         aggregator.Insight
		wantInsight string
	}{
		{
			name:        "overdue wins",
			ins:         aggregator.Insight{TotalNotes: 2, OverdueTasks: 3, OldestOverdue: &oldest, StressedShare: 1},
			wantInsight: "3 pending task(s) past their deadline, oldest due 2026-02-10",
		},
		{
			name:        "tense meetings",
			ins:         aggregator.Insight{TotalNotes: 4, StressedShare: 0.5},
			wantInsight: "50% of meetings were tense or urgent",
		},
		{
			name:        "at threshold",
			ins:         aggregator.Insight{TotalNotes: 20, StressedShare: 0.35},
			wantInsight: "35% of meetings were tense or urgent",
		},
		{
			name:        "calm",
			ins:         aggregator.Insight{TotalNotes: 10, StressedShare: 0.1},
			wantInsight: "Nothing pressing",
		},
		{
			name:        "empty",
			ins:         aggregator.Insight{},
			wantInsight: "Nothing pressing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Generate(tt.ins)
			assert.Equal(t, tt.wantInsight, card.Insight)
			assert.NotEmpty(t, card.Action)
			assert.NotEmpty(t, card.Impact)
		})
	}
}
