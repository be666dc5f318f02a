package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Task() TaskRepository
	Template() TemplateRepository
	Department() DepartmentRepository
	User() UserRepository
	Holiday() HolidayRepository
	Remark() RemarkRepository
	Event() EventRepository

	Close() error
}
