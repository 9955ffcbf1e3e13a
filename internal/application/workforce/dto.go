package workforce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/workforce"
)

// CreateWorkerRequest represents a request to create a worker
type CreateWorkerRequest struct {
	FirstName      string           `json:"firstName" binding:"required,max=100"`
	LastName       string           `json:"lastName" binding:"required,max=100"`
	MiddleName     string           `json:"middleName" binding:"max=100"`
	Email          string           `json:"email" binding:"omitempty,email"`
	Phone          string           `json:"phone" binding:"max=50"`
	BirthDate      *time.Time       `json:"birthDate"`
	HireDate       *time.Time       `json:"hireDate"`
	EmployeeNumber string           `json:"employeeNumber" binding:"max=50"`
	PositionID     *uuid.UUID       `json:"positionId"`
	DepartmentID   *uuid.UUID       `json:"departmentId"`
	HourlyRate     *decimal.Decimal `json:"hourlyRate"`
	Notes          string           `json:"notes" binding:"max=2000"`
}

// UpdateWorkerRequest represents a partial worker update
type UpdateWorkerRequest struct {
	FirstName      *string          `json:"firstName" binding:"omitempty,max=100"`
	LastName       *string          `json:"lastName" binding:"omitempty,max=100"`
	MiddleName     *string          `json:"middleName" binding:"omitempty,max=100"`
	Email          *string          `json:"email" binding:"omitempty"`
	Phone          *string          `json:"phone" binding:"omitempty,max=50"`
	BirthDate      *time.Time       `json:"birthDate"`
	HireDate       *time.Time       `json:"hireDate"`
	EmployeeNumber *string          `json:"employeeNumber" binding:"omitempty,max=50"`
	PositionID     *uuid.UUID       `json:"positionId"`
	DepartmentID   *uuid.UUID       `json:"departmentId"`
	HourlyRate     *decimal.Decimal `json:"hourlyRate"`
	IsActive       *bool            `json:"isActive"`
	Notes          *string          `json:"notes" binding:"omitempty,max=2000"`
}

// WorkerRow is a worker joined with position and department names
type WorkerRow struct {
	Worker         *workforce.Worker
	PositionName   string
	DepartmentName string
}

// WorkerResponse represents a worker in API responses
type WorkerResponse struct {
	ID             uuid.UUID       `json:"id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	MiddleName     string          `json:"middleName"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	BirthDate      *time.Time      `json:"birthDate"`
	HireDate       *time.Time      `json:"hireDate"`
	EmployeeNumber string          `json:"employeeNumber"`
	PositionID     *uuid.UUID      `json:"positionId"`
	PositionName   string          `json:"positionName,omitempty"`
	DepartmentID   *uuid.UUID      `json:"departmentId"`
	DepartmentName string          `json:"departmentName,omitempty"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	IsActive       bool            `json:"isActive"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ToWorkerResponse converts a joined worker row
func ToWorkerResponse(r *WorkerRow) WorkerResponse {
	w := r.Worker
	return WorkerResponse{
		ID:             w.ID,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		MiddleName:     w.MiddleName,
		FullName:       w.FullName(),
		Email:          w.Email,
		Phone:          w.Phone,
		BirthDate:      w.BirthDate,
		HireDate:       w.HireDate,
		EmployeeNumber: w.EmployeeNumber,
		PositionID:     w.PositionID,
		PositionName:   r.PositionName,
		DepartmentID:   w.DepartmentID,
		DepartmentName: r.DepartmentName,
		HourlyRate:     w.HourlyRate,
		IsActive:       w.IsActive,
		Notes:          w.Notes,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// RefRequest creates or updates a position or department
type RefRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// RefResponse represents a position or department
type RefResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
