package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

type fakeAllocationSrv struct {
	slotResp *dto.AllocateSlotResponse
	dayResp  *dto.AllocateDayResponse
	avail    *models.Availability
	err      error
	lastDay  dto.AllocateDayRequest
}

func (f *fakeAllocationSrv) AllocateSlot(context.Context, dto.AllocateSlotRequest) (*dto.AllocateSlotResponse, error) {
	return f.slotResp, f.err
}

func (f *fakeAllocationSrv) AllocateDay(_ context.Context, req dto.AllocateDayRequest) (*dto.AllocateDayResponse, error) {
	f.lastDay = req
	return f.dayResp, f.err
}

func (f *fakeAllocationSrv) CheckAvailability(context.Context, dto.AvailabilityQuery) (*models.Availability, error) {
	return f.avail, f.err
}

func postJSON(t *testing.T, handlerFn gin.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handlerFn(c)
	return rec
}

func TestAllocationHandlerAllocateDay(t *testing.T) {
	srv := &fakeAllocationSrv{dayResp: &dto.AllocateDayResponse{Date: "2025-03-10", Changed: 2}}
	handler := NewAllocationHandler(srv)

	rec := postJSON(t, handler.AllocateDay, "/allocation/day", dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastDay.OnlyFillEmpty)

	var envelope struct {
		Data dto.AllocateDayResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Changed)
}

func TestAllocationHandlerAllocateDayRejectsBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&fakeAllocationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/allocation/day", bytes.NewReader([]byte("{not json")))
	handler.AllocateDay(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllocationHandlerPropagatesServiceError(t *testing.T) {
	srv := &fakeAllocationSrv{err: appErrors.Clone(appErrors.ErrVersionConflict, "")}
	handler := NewAllocationHandler(srv)

	rec := postJSON(t, handler.AllocateSlot, "/allocation/slot", dto.AllocateSlotRequest{AppointmentID: "s1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAllocationHandlerCheckAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&fakeAllocationSrv{avail: &models.Availability{Available: false, Reason: "not punched in"}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/allocation/availability?assistant=JANE&date=2025-03-10&start=10:00&end=10:30", nil)
	handler.CheckAvailability(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.Availability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Available)
	assert.Equal(t, "not punched in", envelope.Data.Reason)
}
