package workforce

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/workforce"
)

// WorkersTableKey is the DataTable key of the workers list
const WorkersTableKey = "workers"

// WorkerService handles workers
type WorkerService struct {
	repo        workforce.WorkerRepository
	positions   workforce.PositionRepository
	departments workforce.DepartmentRepository
	table       *datatable.Table[*WorkerRow]
	fetch       datatable.Fetcher[*WorkerRow]
}

// NewWorkerService creates a new WorkerService
func NewWorkerService(repo workforce.WorkerRepository, positions workforce.PositionRepository, departments workforce.DepartmentRepository) *WorkerService {
	s := &WorkerService{
		repo:        repo,
		positions:   positions,
		departments: departments,
		table:       NewWorkersTable(),
	}
	s.fetch = datatable.Local(s.table, s.loadRows)
	return s
}

// NewWorkersTable defines the workers list columns
func NewWorkersTable() *datatable.Table[*WorkerRow] {
	return datatable.NewTable(WorkersTableKey, []datatable.Column[*WorkerRow]{
		{Key: "employeeNumber", Label: "Employee #", Sortable: true, Filterable: true, Value: func(r *WorkerRow) any { return r.Worker.EmployeeNumber }},
		{Key: "fullName", Label: "Name", Sortable: true, Filterable: true, Value: func(r *WorkerRow) any { return r.Worker.FullName() }},
		{Key: "position", Label: "Position", Sortable: true, Filterable: true, Value: func(r *WorkerRow) any { return r.PositionName }},
		{Key: "department", Label: "Department", Sortable: true, Filterable: true, Value: func(r *WorkerRow) any { return r.DepartmentName }},
		{Key: "email", Label: "Email", Filterable: true, Value: func(r *WorkerRow) any { return r.Worker.Email }},
		{Key: "phone", Label: "Phone", Value: func(r *WorkerRow) any { return r.Worker.Phone }},
		{Key: "hourlyRate", Label: "Rate", Type: datatable.ColumnCurrency, Sortable: true, Value: func(r *WorkerRow) any { return r.Worker.HourlyRate }},
		{Key: "hireDate", Label: "Hired", Type: datatable.ColumnDate, Sortable: true, Value: func(r *WorkerRow) any { return datatable.Deref(r.Worker.HireDate) }},
		{Key: "isActive", Label: "Active", Type: datatable.ColumnBoolean, Sortable: true, Filterable: true, Value: func(r *WorkerRow) any { return r.Worker.IsActive }},
	},
		datatable.WithDefaultSort("fullName", datatable.SortAsc),
		datatable.WithHiddenColumns("phone", "hourlyRate"),
	)
}

// Table returns the workers table definition
func (s *WorkerService) Table() *datatable.Table[*WorkerRow] {
	return s.table
}

func (s *WorkerService) loadRows(ctx context.Context) ([]*WorkerRow, error) {
	workers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, workers)
}

func (s *WorkerService) join(ctx context.Context, workers []workforce.Worker) ([]*WorkerRow, error) {
	positions, err := s.positions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.departments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	posNames := make(map[uuid.UUID]string, len(positions))
	for _, p := range positions {
		posNames[p.ID] = p.Name
	}
	depNames := make(map[uuid.UUID]string, len(departments))
	for _, d := range departments {
		depNames[d.ID] = d.Name
	}

	rows := make([]*WorkerRow, len(workers))
	for i := range workers {
		w := &workers[i]
		rows[i] = &WorkerRow{Worker: w}
		if w.PositionID != nil {
			rows[i].PositionName = posNames[*w.PositionID]
		}
		if w.DepartmentID != nil {
			rows[i].DepartmentName = depNames[*w.DepartmentID]
		}
	}
	return rows, nil
}

func (s *WorkerService) response(ctx context.Context, w *workforce.Worker) (*WorkerResponse, error) {
	rows, err := s.join(ctx, []workforce.Worker{*w})
	if err != nil {
		return nil, err
	}
	resp := ToWorkerResponse(rows[0])
	return &resp, nil
}

// List runs a table query over all workers
func (s *WorkerService) List(ctx context.Context, q datatable.Query) (datatable.Result[WorkerResponse], error) {
	res, err := s.fetch(ctx, q)
	if err != nil {
		return datatable.Result[WorkerResponse]{}, err
	}
	return datatable.MapResult(res, ToWorkerResponse), nil
}

// Export returns every worker matching q
func (s *WorkerService) Export(ctx context.Context, q datatable.Query) ([]*WorkerRow, error) {
	return s.fetch.All(ctx, q)
}

// GetByID retrieves a worker
func (s *WorkerService) GetByID(ctx context.Context, id uuid.UUID) (*WorkerResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, w)
}

// Create creates an active worker
func (s *WorkerService) Create(ctx context.Context, req CreateWorkerRequest) (*WorkerResponse, error) {
	w, err := workforce.NewWorker(req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	if err := w.Rename(req.FirstName, req.LastName, req.MiddleName); err != nil {
		return nil, err
	}
	if err := s.checkEmployeeNumber(ctx, req.EmployeeNumber, nil); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.PositionID, req.DepartmentID); err != nil {
		return nil, err
	}
	w.SetContact(req.Email, req.Phone)
	w.SetEmployment(strings.TrimSpace(req.EmployeeNumber), req.HireDate, req.PositionID, req.DepartmentID)
	if err := w.SetBirthDate(req.BirthDate); err != nil {
		return nil, err
	}
	if req.HourlyRate != nil {
		if err := w.SetHourlyRate(*req.HourlyRate); err != nil {
			return nil, err
		}
	}
	w.SetNotes(req.Notes)
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.response(ctx, w)
}

// Update applies the supplied fields to a worker
func (s *WorkerService) Update(ctx context.Context, id uuid.UUID, req UpdateWorkerRequest) (*WorkerResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil || req.LastName != nil || req.MiddleName != nil {
		if err := w.Rename(valueOr(req.FirstName, w.FirstName), valueOr(req.LastName, w.LastName), valueOr(req.MiddleName, w.MiddleName)); err != nil {
			return nil, err
		}
	}
	if req.Email != nil || req.Phone != nil {
		w.SetContact(valueOr(req.Email, w.Email), valueOr(req.Phone, w.Phone))
	}
	if req.EmployeeNumber != nil || req.HireDate != nil || req.PositionID != nil || req.DepartmentID != nil {
		number := w.EmployeeNumber
		if req.EmployeeNumber != nil {
			number = strings.TrimSpace(*req.EmployeeNumber)
			if err := s.checkEmployeeNumber(ctx, number, &w.ID); err != nil {
				return nil, err
			}
		}
		if err := s.checkRefs(ctx, req.PositionID, req.DepartmentID); err != nil {
			return nil, err
		}
		hire, position, department := w.HireDate, w.PositionID, w.DepartmentID
		if req.HireDate != nil {
			hire = req.HireDate
		}
		if req.PositionID != nil {
			position = req.PositionID
		}
		if req.DepartmentID != nil {
			department = req.DepartmentID
		}
		w.SetEmployment(number, hire, position, department)
	}
	if req.BirthDate != nil {
		if err := w.SetBirthDate(req.BirthDate); err != nil {
			return nil, err
		}
	}
	if req.HourlyRate != nil {
		if err := w.SetHourlyRate(*req.HourlyRate); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		w.SetActive(*req.IsActive)
	}
	if req.Notes != nil {
		w.SetNotes(*req.Notes)
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.response(ctx, w)
}

// Delete removes a worker
func (s *WorkerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *WorkerService) checkEmployeeNumber(ctx context.Context, number string, excludeID *uuid.UUID) error {
	if number == "" {
		return nil
	}
	exists, err := s.repo.ExistsByEmployeeNumber(ctx, number, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Worker with this employee number already exists")
	}
	return nil
}

func (s *WorkerService) checkRefs(ctx context.Context, positionID, departmentID *uuid.UUID) error {
	if positionID != nil {
		if _, err := s.positions.FindByID(ctx, *positionID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_POSITION", "Position not found")
			}
			return err
		}
	}
	if departmentID != nil {
		if _, err := s.departments.FindByID(ctx, *departmentID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_DEPARTMENT", "Department not found")
			}
			return err
		}
	}
	return nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
