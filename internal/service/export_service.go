package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/export"
	"github.com/smilekraft/clinic-ops-api/pkg/jobs"
)

type exportAppointmentRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type exportSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

// ExportService renders day rosters to CSV or PDF through a background
// queue and tracks job status in memory.
type ExportService struct {
	appointments exportAppointmentRepository
	storage      exportStorage
	signer       exportSigner
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	queue        *jobs.Queue
	retention    time.Duration
	logger       *zap.Logger
	validator    *validator.Validate

	mu       sync.RWMutex
	statuses map[string]*dto.ExportJobStatus
}

type exportPayload struct {
	JobID  string
	Date   time.Time
	Format string
}

// NewExportService wires the export pipeline. Start must be called before
// Enqueue accepts work.
func NewExportService(appointments exportAppointmentRepository, storage exportStorage, signer exportSigner, retention time.Duration, queueCfg jobs.QueueConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	s := &ExportService{
		appointments: appointments,
		storage:      storage,
		signer:       signer,
		retention:    retention,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
		validator:    validator.New(),
		statuses:     make(map[string]*dto.ExportJobStatus),
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("roster-exports", s.process, queueCfg)
	return s
}

// Start launches the export workers and the retention janitor. Files stay
// on disk as long as their download tokens are valid, then get swept.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.janitor(ctx)
}

func (s *ExportService) janitor(ctx context.Context) {
	interval := s.retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.storage.CleanupOlderThan(s.retention)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired export files removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// QueueDepth reports the number of buffered export jobs.
func (s *ExportService) QueueDepth() int {
	return s.queue.Depth()
}

// Enqueue queues a day-roster export and returns its tracking status.
func (s *ExportService) Enqueue(ctx context.Context, req dto.ExportRequest) (*dto.ExportJobStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	status := &dto.ExportJobStatus{
		JobID:       uuid.NewString(),
		Date:        req.Date,
		Format:      req.Format,
		Status:      "queued",
		RequestedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.statuses[status.JobID] = status
	s.mu.Unlock()

	err = s.queue.Enqueue(jobs.Job{
		ID:      status.JobID,
		Type:    "roster-export",
		Payload: exportPayload{JobID: status.JobID, Date: date, Format: req.Format},
	})
	if err != nil {
		s.finish(status.JobID, "", err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "export queue is full")
	}
	return status, nil
}

// Status reports a queued or finished export job.
func (s *ExportService) Status(jobID string) (*dto.ExportJobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[jobID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	copied := *status
	return &copied, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload %T", job.Payload)
	}

	dataset, err := s.buildDayRoster(ctx, payload.Date)
	if err != nil {
		s.finish(payload.JobID, "", err)
		return err
	}

	var rendered []byte
	filename := fmt.Sprintf("roster-%s-%s.%s", payload.Date.Format("2006-01-02"), payload.JobID[:8], payload.Format)
	switch payload.Format {
	case "pdf":
		rendered, err = s.pdf.Render(dataset, "Day Roster "+payload.Date.Format("2006-01-02"))
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.finish(payload.JobID, "", err)
		return err
	}

	path, err := s.storage.Save(filename, rendered)
	if err != nil {
		s.finish(payload.JobID, "", err)
		return err
	}
	s.finish(payload.JobID, path, nil)
	return nil
}

// buildDayRoster flattens a date's schedule into the export table.
func (s *ExportService) buildDayRoster(ctx context.Context, date time.Time) (export.Dataset, error) {
	schedule, err := s.appointments.ListByDate(ctx, date)
	if err != nil {
		return export.Dataset{}, err
	}

	dataset := export.Dataset{
		Headers: []string{"Patient", "Doctor", "Room", "Start", "End", "Procedure", "First", "Second", "Third", "Status"},
	}
	for _, slot := range schedule {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Patient":   slot.PatientName,
			"Doctor":    slot.DoctorName,
			"Room":      slot.OPRoom,
			"Start":     slot.StartTime,
			"End":       slot.EndTime,
			"Procedure": slot.Procedure,
			"First":     slot.FirstAssistant,
			"Second":    slot.SecondAssistant,
			"Third":     slot.ThirdAssistant,
			"Status":    string(slot.Status),
		})
	}
	return dataset, nil
}

func (s *ExportService) finish(jobID, path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[jobID]
	if !ok {
		return
	}
	now := time.Now().UTC()
	status.FinishedAt = &now
	if err != nil {
		status.Status = "failed"
		status.Error = err.Error()
		return
	}
	status.Status = "done"
	status.FilePath = path
	if s.signer != nil {
		token, expiresAt, signErr := s.signer.Generate(jobID, path)
		if signErr != nil {
			s.logger.Warn("sign export download", zap.String("jobId", jobID), zap.Error(signErr))
			return
		}
		status.Download = token
		status.DownloadExp = &expiresAt
	}
}

// Download resolves a signed token to the finished export file. The token is
// the only credential, so this path works without a session.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	if s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "export downloads are disabled")
	}
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}

	s.mu.RLock()
	status, ok := s.statuses[jobID]
	done := ok && status.Status == "done" && status.FilePath == relPath
	s.mu.RUnlock()
	if !done {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file not available")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not available")
	}
	return file, filepath.Base(relPath), nil
}
