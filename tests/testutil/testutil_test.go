package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/infrastructure/auth"
	"github.com/erp/factory/internal/infrastructure/logger"
	"github.com/erp/factory/internal/interfaces/http/dto"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	mockDB.ExpectationsWereMet(t)
}

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)
	require.NoError(t, db.Ping(context.Background()))
	assert.True(t, db.DB.Migrator().HasTable("products"))
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", tc.Context.GetString("request_id"))
	assert.Equal(t, "req-123", logger.RequestID(tc.Context.Request.Context()))

	tc.SetUser(TestUser())
	u, ok := auth.UserFromContext(tc.Context.Request.Context())
	require.True(t, ok)
	assert.Equal(t, TestUserID(), u.UserID)
}

func TestAsUser(t *testing.T) {
	engine := gin.New()
	engine.GET("/", AsUser(TestUser()), func(c *gin.Context) {
		u, _ := auth.UserFromContext(c.Request.Context())
		c.JSON(http.StatusOK, dto.NewSuccessResponse(u))
	})

	w := NewAPI(t, engine).Do(http.MethodGet, "/", nil)
	RequireStatus(t, w, http.StatusOK)
	assert.Equal(t, "tester", Data[map[string]any](t, w)["username"])
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context did not expire")
	}
}

func TestAssertEventually(t *testing.T) {
	done := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(done)
	}()

	AssertEventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestErrorCode(t *testing.T) {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "missing"))
	})

	w := NewAPI(t, engine).Do(http.MethodGet, "/", nil)
	assert.Equal(t, dto.ErrCodeNotFound, ErrorCode(t, w))
}

func TestSequenceNumbers(t *testing.T) {
	g := NewSequenceNumbers()
	assert.Equal(t, "MO-0001", g.Next("MO"))
	assert.Equal(t, "MO-0002", g.Next("MO"))
	assert.Equal(t, "SR-0001", g.Next("SR"))
}

func TestMockStock(t *testing.T) {
	stock := new(MockStock)
	stock.On("AddStock", context.Background(), TestUserID(), TestUserID(), decimal.NewFromInt(3)).Return(nil)

	require.NoError(t, stock.AddStock(context.Background(), TestUserID(), TestUserID(), decimal.NewFromInt(3)))
	stock.AssertExpectations(t)
}
