package client

import (
	"testing"
	"time"

	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg/timefmt"
)

func msgAt(id string, t time.Time) models.Message {
	return models.Message{ID: id, Content: "x", CreatedAt: t}
}

func TestGroupByDay(t *testing.T) {
	now := time.Now()
	today := now.Add(-time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	lastWeek := now.AddDate(0, 0, -7)

	messages := []models.Message{
		msgAt("m1", lastWeek),
		msgAt("m2", lastWeek.Add(time.Minute)),
		msgAt("m3", yesterday),
		msgAt("m4", today),
		msgAt("m5", now),
	}

	groups := GroupByDay(messages)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	if groups[0].Label != lastWeek.Format("Jan 2, 2006") {
		t.Errorf("first label = %q, want date", groups[0].Label)
	}
	if len(groups[0].Messages) != 2 {
		t.Errorf("first group size = %d, want 2", len(groups[0].Messages))
	}
	if groups[1].Label != "Yesterday" {
		t.Errorf("second label = %q, want Yesterday", groups[1].Label)
	}
	if groups[2].Label != "Today" {
		t.Errorf("third label = %q, want Today", groups[2].Label)
	}
	if len(groups[2].Messages) != 2 {
		t.Errorf("today group size = %d, want 2", len(groups[2].Messages))
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	groups := GroupByDay(nil)
	if groups == nil || len(groups) != 0 {
		t.Errorf("GroupByDay(nil) = %v, want empty slice", groups)
	}
}

func TestTimeLabelInvalidDate(t *testing.T) {
	if got := TimeLabel(models.Message{}); got != timefmt.InvalidDate {
		t.Errorf("TimeLabel(zero) = %q, want %q", got, timefmt.InvalidDate)
	}
}
