package workforce

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/shared"
)

// Worker is an employee who can be assigned to production
type Worker struct {
	shared.BaseAggregateRoot
	FirstName      string
	LastName       string
	MiddleName     string
	Email          string
	Phone          string
	BirthDate      *time.Time
	HireDate       *time.Time
	EmployeeNumber string
	PositionID     *uuid.UUID
	DepartmentID   *uuid.UUID
	HourlyRate     decimal.Decimal
	IsActive       bool
	Notes          string
}

// NewWorker creates an active worker
func NewWorker(firstName, lastName string) (*Worker, error) {
	w := &Worker{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		HourlyRate:        decimal.Zero,
		IsActive:          true,
	}
	if err := w.setName(firstName, lastName, ""); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Worker) setName(first, last, middle string) error {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" || last == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if len(first) > 100 || len(last) > 100 || len(middle) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name parts cannot exceed 100 characters")
	}
	w.FirstName, w.LastName, w.MiddleName = first, last, strings.TrimSpace(middle)
	return nil
}

// Rename updates the personal names
func (w *Worker) Rename(first, last, middle string) error {
	if err := w.setName(first, last, middle); err != nil {
		return err
	}
	w.Touch()
	return nil
}

// FullName returns "Last First Middle"
func (w *Worker) FullName() string {
	return strings.TrimSpace(strings.Join([]string{w.LastName, w.FirstName, w.MiddleName}, " "))
}

// SetContact sets email and phone
func (w *Worker) SetContact(email, phone string) {
	w.Email = email
	w.Phone = phone
	w.Touch()
}

// SetEmployment sets employment details
func (w *Worker) SetEmployment(employeeNumber string, hireDate *time.Time, positionID, departmentID *uuid.UUID) {
	w.EmployeeNumber = employeeNumber
	w.HireDate = hireDate
	w.PositionID = positionID
	w.DepartmentID = departmentID
	w.Touch()
}

// SetBirthDate sets the birth date
func (w *Worker) SetBirthDate(d *time.Time) error {
	if d != nil && d.After(shared.Now()) {
		return shared.NewDomainError("INVALID_BIRTH_DATE", "Birth date cannot be in the future")
	}
	w.BirthDate = d
	w.Touch()
	return nil
}

// SetHourlyRate sets the pay rate
func (w *Worker) SetHourlyRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}
	w.HourlyRate = rate
	w.Touch()
	return nil
}

// SetActive activates or deactivates the worker
func (w *Worker) SetActive(active bool) {
	w.IsActive = active
	w.Touch()
}

// SetNotes sets free-form notes
func (w *Worker) SetNotes(notes string) {
	w.Notes = notes
	w.Touch()
}

// Position is a job title
type Position struct {
	shared.BaseEntity
	Name        string
	Description string
}

// Department is an organizational unit
type Department struct {
	shared.BaseEntity
	Name        string
	Description string
}

// NewPosition creates a position
func NewPosition(name, description string) (*Position, error) {
	if err := validateRefName(name); err != nil {
		return nil, err
	}
	return &Position{BaseEntity: shared.NewBaseEntity(), Name: strings.TrimSpace(name), Description: description}, nil
}

// NewDepartment creates a department
func NewDepartment(name, description string) (*Department, error) {
	if err := validateRefName(name); err != nil {
		return nil, err
	}
	return &Department{BaseEntity: shared.NewBaseEntity(), Name: strings.TrimSpace(name), Description: description}, nil
}

// Update changes the position name and description
func (p *Position) Update(name, description string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	p.Name, p.Description, p.UpdatedAt = strings.TrimSpace(name), description, shared.Now()
	return nil
}

// Update changes the department name and description
func (d *Department) Update(name, description string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	d.Name, d.Description, d.UpdatedAt = strings.TrimSpace(name), description, shared.Now()
	return nil
}

func validateRefName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name must be 1-100 characters")
	}
	return nil
}
