package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usmanali13/university-timetable-management/internal/models"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
	"github.com/usmanali13/university-timetable-management/pkg/jobs"
	"github.com/usmanali13/university-timetable-management/pkg/mailer"
)

type stubTimetableReader struct {
	timetable *models.Timetable
	err       error
}

func (s *stubTimetableReader) GetByTriple(_ context.Context, _, _ string, _ models.Shift) (*models.Timetable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.timetable, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(_ *models.Timetable) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

type stubStudentLister struct {
	students []models.User
}

func (s *stubStudentLister) ListStudents(_ context.Context) ([]models.User, error) {
	return s.students, nil
}

type captureMailer struct {
	sent []mailer.Message
}

func (c *captureMailer) Send(msg mailer.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

type captureQueue struct {
	jobs []jobs.Job
}

func (c *captureQueue) Enqueue(job jobs.Job) error {
	c.jobs = append(c.jobs, job)
	return nil
}

func newExportFixture(reader *stubTimetableReader, students *stubStudentLister, mail *captureMailer, queue *captureQueue) *ExportService {
	return NewExportService(reader, students, stubRenderer{}, mail, queue, nil, zap.NewNop())
}

func storedTimetable() *models.Timetable {
	return &models.Timetable{
		ID:         "t1",
		Department: "CS",
		Semester:   "3",
		Shift:      models.ShiftMorning,
		Schedule: models.Schedule{
			{Day: "Monday", Classes: []models.ClassEntry{{ID: "e1", TimeSlot: "9AM-10AM", CourseCode: "CS101"}}},
		},
	}
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc := newExportFixture(&stubTimetableReader{timetable: storedTimetable()}, &stubStudentLister{}, &captureMailer{}, &captureQueue{})

	pdf, filename, err := svc.RenderPDF(context.Background(), "CS", "3", models.ShiftMorning)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "timetable-CS-3-Morning.pdf", filename)
}

func TestExportServiceRenderPDFNotFound(t *testing.T) {
	svc := newExportFixture(&stubTimetableReader{err: appErrors.Clone(appErrors.ErrNotFound, "timetable not found")}, &stubStudentLister{}, &captureMailer{}, &captureQueue{})

	_, _, err := svc.RenderPDF(context.Background(), "CS", "3", models.ShiftMorning)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestExportServiceEmailTimetableQueuesJob(t *testing.T) {
	queue := &captureQueue{}
	svc := newExportFixture(&stubTimetableReader{timetable: storedTimetable()}, &stubStudentLister{}, &captureMailer{}, queue)

	err := svc.EmailTimetable(context.Background(), EmailTimetableRequest{
		Email:      "student@example.com",
		Department: "CS",
		Semester:   "3",
		Shift:      "Morning",
	})
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)

	payload, ok := queue.jobs[0].Payload.(TimetableEmailPayload)
	require.True(t, ok)
	assert.Equal(t, "student@example.com", payload.To)
	assert.NotEmpty(t, payload.Attachment)
}

func TestExportServiceEmailAllStudents(t *testing.T) {
	queue := &captureQueue{}
	students := &stubStudentLister{students: []models.User{
		{ID: "u1", Email: "a@example.com"},
		{ID: "u2", Email: "b@example.com"},
	}}
	svc := newExportFixture(&stubTimetableReader{timetable: storedTimetable()}, students, &captureMailer{}, queue)

	queued, err := svc.EmailAllStudents(context.Background(), EmailAllRequest{
		Department: "CS", Semester: "3", Shift: "Morning",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, queued)
	assert.Len(t, queue.jobs, 2)
}

func TestExportServiceEmailAllStudentsNoneRegistered(t *testing.T) {
	svc := newExportFixture(&stubTimetableReader{timetable: storedTimetable()}, &stubStudentLister{}, &captureMailer{}, &captureQueue{})

	_, err := svc.EmailAllStudents(context.Background(), EmailAllRequest{
		Department: "CS", Semester: "3", Shift: "Morning",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrorCode(t, err))
}

func TestExportServiceHandleEmailJob(t *testing.T) {
	mail := &captureMailer{}
	svc := newExportFixture(&stubTimetableReader{}, &stubStudentLister{}, mail, &captureQueue{})

	err := svc.HandleEmailJob(context.Background(), jobs.Job{
		ID:   "j1",
		Type: "timetable_email",
		Payload: TimetableEmailPayload{
			To:         "student@example.com",
			Subject:    "Class Timetable",
			Attachment: []byte("%PDF-1.4"),
			Filename:   "timetable.pdf",
		},
	})
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "student@example.com", mail.sent[0].To)
}

func TestExportServiceHandleEmailJobBadPayload(t *testing.T) {
	svc := newExportFixture(&stubTimetableReader{}, &stubStudentLister{}, &captureMailer{}, &captureQueue{})

	err := svc.HandleEmailJob(context.Background(), jobs.Job{ID: "j1", Payload: "oops"})
	require.Error(t, err)
}
