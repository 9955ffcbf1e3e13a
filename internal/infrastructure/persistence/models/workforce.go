package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/workforce"
)

// WorkerModel is the persistence model for the Worker domain entity.
type WorkerModel struct {
	AggregateModel
	FirstName      string `gorm:"type:varchar(100);not null"`
	LastName       string `gorm:"type:varchar(100);not null"`
	MiddleName     string `gorm:"type:varchar(100)"`
	Email          string `gorm:"type:varchar(200)"`
	Phone          string `gorm:"type:varchar(50)"`
	BirthDate      *time.Time
	HireDate       *time.Time
	EmployeeNumber string          `gorm:"type:varchar(50);index"`
	PositionID     *uuid.UUID      `gorm:"type:uuid;index"`
	DepartmentID   *uuid.UUID      `gorm:"type:uuid;index"`
	HourlyRate     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	Notes          string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (WorkerModel) TableName() string {
	return "workers"
}

// ToDomain converts the persistence model to a domain Worker entity.
func (m *WorkerModel) ToDomain() *workforce.Worker {
	return &workforce.Worker{
		BaseAggregateRoot: m.ToAggregateRoot(),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		MiddleName:        m.MiddleName,
		Email:             m.Email,
		Phone:             m.Phone,
		BirthDate:         m.BirthDate,
		HireDate:          m.HireDate,
		EmployeeNumber:    m.EmployeeNumber,
		PositionID:        m.PositionID,
		DepartmentID:      m.DepartmentID,
		HourlyRate:        m.HourlyRate,
		IsActive:          m.IsActive,
		Notes:             m.Notes,
	}
}

// WorkerModelFromDomain creates a persistence model from a domain Worker entity.
func WorkerModelFromDomain(w *workforce.Worker) *WorkerModel {
	m := &WorkerModel{
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		MiddleName:     w.MiddleName,
		Email:          w.Email,
		Phone:          w.Phone,
		BirthDate:      w.BirthDate,
		HireDate:       w.HireDate,
		EmployeeNumber: w.EmployeeNumber,
		PositionID:     w.PositionID,
		DepartmentID:   w.DepartmentID,
		HourlyRate:     w.HourlyRate,
		IsActive:       w.IsActive,
		Notes:          w.Notes,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}

// PositionModel is a job position.
type PositionModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PositionModel) TableName() string {
	return "positions"
}

func (m *PositionModel) ToDomain() *workforce.Position {
	return &workforce.Position{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name, Description: m.Description}
}

func PositionModelFromDomain(p *workforce.Position) *PositionModel {
	m := &PositionModel{Name: p.Name, Description: p.Description}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// DepartmentModel is an organizational unit.
type DepartmentModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DepartmentModel) TableName() string {
	return "departments"
}

func (m *DepartmentModel) ToDomain() *workforce.Department {
	return &workforce.Department{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name, Description: m.Description}
}

func DepartmentModelFromDomain(d *workforce.Department) *DepartmentModel {
	m := &DepartmentModel{Name: d.Name, Description: d.Description}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
