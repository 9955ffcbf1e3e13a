package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	datatableapp "github.com/erp/factory/internal/application/datatable"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/auth"
	"github.com/erp/factory/internal/infrastructure/export"
	"github.com/erp/factory/internal/infrastructure/logger"
)

// TableSettings is the part of the settings service used by list endpoints
type TableSettings interface {
	QueryResolver
	Get(ctx context.Context, userID uuid.UUID, key string) (*datatableapp.SettingsResponse, error)
}

// ExportRecorder counts exported rows
type ExportRecorder interface {
	RecordExport(ctx context.Context, table, format string, rows int)
}

// Tables carries what list and export endpoints share. A nil *Tables lists
// with request parameters only and exports every column.
type Tables struct {
	Settings TableSettings
	Recorder ExportRecorder
	Now      func() time.Time
}

func (t *Tables) resolver() QueryResolver {
	if t == nil || t.Settings == nil {
		return nil
	}
	return t.Settings
}

// columns returns the user's visible columns in their order, or every column
func columnsFor[T any](ctx context.Context, t *Tables, table *datatable.Table[T]) []datatable.Column[T] {
	all := table.Columns()
	if t == nil || t.Settings == nil {
		return all
	}
	u, ok := auth.UserFromContext(ctx)
	if !ok {
		return all
	}
	resp, err := t.Settings.Get(ctx, u.UserID, table.Key())
	if err != nil {
		logger.FromContext(ctx).Warn("Exporting all columns", zap.String("table", table.Key()), zap.Error(err))
		return all
	}
	if cols := table.Ordered(resp.Settings); len(cols) > 0 {
		return cols
	}
	return all
}

// exportTable writes every row matching the request query as an XLSX download
func exportTable[T any](
	h *BaseHandler,
	c *gin.Context,
	t *Tables,
	table *datatable.Table[T],
	fetch func(context.Context, datatable.Query) ([]T, error),
) {
	q, ok := h.tableQuery(c, t.resolver(), table.Key())
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, err := fetch(ctx, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table.Key(), columnsFor(ctx, t, table), rows); err != nil {
		h.HandleError(c, shared.NewDomainError("INTERNAL_ERROR", "Failed to build spreadsheet"))
		return
	}

	now := shared.Now()
	if t != nil {
		if t.Recorder != nil {
			t.Recorder.RecordExport(ctx, table.Key(), "xlsx", len(rows))
		}
		if t.Now != nil {
			now = t.Now()
		}
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(table.Key(), now)+`"`)
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
