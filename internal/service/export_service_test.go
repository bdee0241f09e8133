package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	"github.com/smilekraft/clinic-ops-api/pkg/jobs"
	"github.com/smilekraft/clinic-ops-api/pkg/storage"
)

type stubExportScheduleSource struct {
	schedule []models.Appointment
}

func (s *stubExportScheduleSource) ListByDate(_ context.Context, _ time.Time) ([]models.Appointment, error) {
	return s.schedule, nil
}

func newExportFixture(t *testing.T) (*ExportService, context.CancelFunc) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)

	repo := &stubExportScheduleSource{schedule: []models.Appointment{{
		ID:          "s1",
		PatientName: "Rao",
		DoctorName:  "ANAND",
		StartTime:   "10:00 AM",
		EndTime:     "10:30 AM",
		Status:      models.StatusPending,
	}}}
	svc := NewExportService(repo, store, signer, time.Hour, jobs.QueueConfig{Workers: 1}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(svc.Stop)
	return svc, cancel
}

func TestExportLifecycleWithSignedDownload(t *testing.T) {
	svc, cancel := newExportFixture(t)
	defer cancel()

	status, err := svc.Enqueue(context.Background(), dto.ExportRequest{Date: "2025-03-10", Format: "csv"})
	require.NoError(t, err)
	require.Equal(t, "queued", status.Status)

	require.Eventually(t, func() bool {
		st, err := svc.Status(status.JobID)
		return err == nil && st.Status == "done"
	}, 2*time.Second, 10*time.Millisecond)

	st, err := svc.Status(status.JobID)
	require.NoError(t, err)
	require.NotEmpty(t, st.FilePath)
	require.NotEmpty(t, st.Download)
	require.NotNil(t, st.DownloadExp)

	file, name, err := svc.Download(st.Download)
	require.NoError(t, err)
	defer file.Close()
	require.True(t, strings.HasSuffix(name, ".csv"))

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Contains(t, string(data), "Rao")
	require.Contains(t, string(data), "10:00 AM")
}

func TestExportDownloadRejectsForgedToken(t *testing.T) {
	svc, cancel := newExportFixture(t)
	defer cancel()

	_, _, err := svc.Download("job.9999999999.cGF0aA.deadbeef")
	require.Error(t, err)
}

func TestExportEnqueueValidatesDate(t *testing.T) {
	svc, cancel := newExportFixture(t)
	defer cancel()

	_, err := svc.Enqueue(context.Background(), dto.ExportRequest{Date: "10-03-2025", Format: "csv"})
	require.Error(t, err)

	_, err = svc.Enqueue(context.Background(), dto.ExportRequest{Date: "2025-03-10", Format: "xlsx"})
	require.Error(t, err)
}

func TestExportStatusUnknownJob(t *testing.T) {
	svc, cancel := newExportFixture(t)
	defer cancel()

	_, err := svc.Status("missing")
	require.Error(t, err)
}
