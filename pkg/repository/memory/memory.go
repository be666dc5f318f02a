// Package memory provides an in-process repository backend for development
// and tests.
package memory

import (
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	task       *taskRepository
	template   *templateRepository
	department *departmentRepository
	user       *userRepository
	holiday    *holidayRepository
	remark     *remarkRepository
	event      *eventRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	taskRepo := newTaskRepository()
	templateRepo := newTemplateRepository()

	return &Memory{
		task:       taskRepo,
		template:   templateRepo,
		department: newDepartmentRepository(taskRepo, templateRepo),
		user:       newUserRepository(),
		holiday:    newHolidayRepository(),
		remark:     newRemarkRepository(),
		event:      newEventRepository(),
	}
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) Template() interfaces.TemplateRepository {
	return m.template
}

func (m *Memory) Department() interfaces.DepartmentRepository {
	return m.department
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Holiday() interfaces.HolidayRepository {
	return m.holiday
}

func (m *Memory) Remark() interfaces.RemarkRepository {
	return m.remark
}

func (m *Memory) Event() interfaces.EventRepository {
	return m.event
}

func (m *Memory) Close() error {
	return nil
}
