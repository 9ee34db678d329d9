package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usmanali13/university-timetable-management/internal/models"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
	"github.com/usmanali13/university-timetable-management/pkg/jobs"
	"github.com/usmanali13/university-timetable-management/pkg/mailer"
)

type timetableReader interface {
	GetByTriple(ctx context.Context, department, semester string, shift models.Shift) (*models.Timetable, error)
}

type pdfRenderer interface {
	Render(timetable *models.Timetable) ([]byte, error)
}

type mailSender interface {
	Send(msg mailer.Message) error
}

type studentLister interface {
	ListStudents(ctx context.Context) ([]models.User, error)
}

type emailEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// EmailTimetableRequest identifies the timetable to send and the recipient.
type EmailTimetableRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	Semester   string `json:"semester" validate:"required"`
	Shift      string `json:"shift" validate:"required,oneof=Morning Evening"`
}

// EmailAllRequest identifies the timetable to fan out to every student.
type EmailAllRequest struct {
	Department string `json:"department" validate:"required"`
	Semester   string `json:"semester" validate:"required"`
	Shift      string `json:"shift" validate:"required,oneof=Morning Evening"`
}

// TimetableEmailPayload is the job payload carried through the email queue.
type TimetableEmailPayload struct {
	To         string
	Subject    string
	Body       string
	Attachment []byte
	Filename   string
}

// ExportService renders timetables to PDF and delivers them by email.
type ExportService struct {
	timetables timetableReader
	students   studentLister
	renderer   pdfRenderer
	mailer     mailSender
	queue      emailEnqueuer
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(
	timetables timetableReader,
	students studentLister,
	renderer pdfRenderer,
	mailer mailSender,
	queue emailEnqueuer,
	validate *validator.Validate,
	logger *zap.Logger,
) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables: timetables,
		students:   students,
		renderer:   renderer,
		mailer:     mailer,
		queue:      queue,
		validator:  validate,
		logger:     logger,
	}
}

// RenderPDF returns the timetable for the triple rendered as a PDF along with
// a suggested filename.
func (s *ExportService) RenderPDF(ctx context.Context, department, semester string, shift models.Shift) ([]byte, string, error) {
	timetable, err := s.timetables.GetByTriple(ctx, department, semester, shift)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.Render(timetable)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	filename := fmt.Sprintf("timetable-%s-%s-%s.pdf", department, semester, shift)
	return pdf, filename, nil
}

// EmailTimetable sends the rendered timetable to a single recipient, queued
// for background delivery.
func (s *ExportService) EmailTimetable(ctx context.Context, req EmailTimetableRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email payload")
	}

	pdf, filename, err := s.RenderPDF(ctx, req.Department, req.Semester, models.Shift(req.Shift))
	if err != nil {
		return err
	}
	return s.enqueue(req.Email, req.Department, req.Semester, req.Shift, pdf, filename)
}

// EmailAllStudents fans the rendered timetable out to every registered
// student through the email queue. Returns the number of queued messages.
func (s *ExportService) EmailAllStudents(ctx context.Context, req EmailAllRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email payload")
	}

	pdf, filename, err := s.RenderPDF(ctx, req.Department, req.Semester, models.Shift(req.Shift))
	if err != nil {
		return 0, err
	}

	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if len(students) == 0 {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "no registered students")
	}

	queued := 0
	for _, student := range students {
		if err := s.enqueue(student.Email, req.Department, req.Semester, req.Shift, pdf, filename); err != nil {
			s.logger.Warn("failed to queue timetable email",
				zap.String("email", student.Email),
				zap.Error(err),
			)
			continue
		}
		queued++
	}
	return queued, nil
}

// HandleEmailJob is the queue handler that performs the actual SMTP delivery.
func (s *ExportService) HandleEmailJob(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(TimetableEmailPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	if err := s.mailer.Send(mailer.Message{
		To:         payload.To,
		Subject:    payload.Subject,
		Body:       payload.Body,
		Attachment: payload.Attachment,
		Filename:   payload.Filename,
	}); err != nil {
		return err
	}
	s.logger.Info("timetable email sent", zap.String("email", payload.To))
	return nil
}

func (s *ExportService) enqueue(to, department, semester, shift string, pdf []byte, filename string) error {
	subject := fmt.Sprintf("Class Timetable: %s Semester %s (%s)", department, semester, shift)
	body := fmt.Sprintf("Please find attached the class timetable for %s, semester %s, %s shift.", department, semester, shift)

	err := s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "timetable_email",
		Payload: TimetableEmailPayload{
			To:         to,
			Subject:    subject,
			Body:       body,
			Attachment: pdf,
			Filename:   filename,
		},
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue email")
	}
	return nil
}
