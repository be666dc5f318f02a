package notify

import (
	"fmt"
	"strings"

	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// TaskCreated builds the notification for a newly expanded task
func TaskCreated(task *model.Task, to []string) *model.Notification {
	body := fmt.Sprintf("A new compliance task has been created for %s.\n%s",
		task.DepartmentID, taskSummary(task))
	return &model.Notification{
		Subject: fmt.Sprintf("New compliance task: %s", task.Name),
		To:      to,
		Body:    body,
	}
}

// Transition builds the notification for an accepted status transition
func Transition(task *model.Task, from, to types.TaskStatus, actor model.Actor, recipients []string) *model.Notification {
	body := fmt.Sprintf("Status changed from %s to %s by %s.\n%s",
		from, to, actor.ID, taskSummary(task))
	return &model.Notification{
		Subject: fmt.Sprintf("Task %s: %s", to, task.Name),
		To:      recipients,
		Body:    body,
	}
}

// Digest builds a notification listing multiple tasks, for due-today
// and overdue reminder runs.
func Digest(subject string, tasks []*model.Task, to []string) *model.Notification {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		due := "pending board meeting date"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (due %s, %s)",
			t.DepartmentID, t.Name, due, t.Status))
	}

	return &model.Notification{
		Subject: subject,
		To:      to,
		Body:    strings.Join(lines, "\n"),
	}
}

func taskSummary(task *model.Task) string {
	due := "pending board meeting date"
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02")
	}
	return fmt.Sprintf("Task: %s\nDepartment: %s\nDue: %s\nPriority: %s",
		task.Name, task.DepartmentID, due, task.Priority)
}
