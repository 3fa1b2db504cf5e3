package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/dedupe"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/jobs"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/messaging"
)

type semesterReader interface {
	ListActive(ctx context.Context) ([]models.Semester, error)
}

type feeStructureReader interface {
	ListBySemester(ctx context.Context, semesterID string) ([]models.FeeStructure, error)
}

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type verifiedPaymentChecker interface {
	HasVerified(ctx context.Context, studentID, semesterID string) (bool, error)
}

type pushSender interface {
	Send(ctx context.Context, msg messaging.PushMessage) (string, error)
}

type emailSender interface {
	Send(ctx context.Context, msg messaging.EmailMessage) error
}

type notificationLedger interface {
	Record(ctx context.Context, n *models.Notification) error
}

type reminderGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// ReminderConfig tunes the reminder evaluation.
type ReminderConfig struct {
	Offsets   []int
	PortalURL string
}

// ReminderRunStats summarises one job run.
type ReminderRunStats struct {
	Semesters int `json:"semesters"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// ReminderService evaluates deadline reminders for active semesters and fans
// deliveries out per channel. A failure on one semester or fee structure is
// isolated to that unit; only failing the root semester query aborts a run.
type ReminderService struct {
	semesters semesterReader
	fees      feeStructureReader
	students  studentLister
	payments  verifiedPaymentChecker
	push      pushSender
	email     emailSender
	ledger    notificationLedger
	guard     reminderGuard
	pool      *jobs.Pool
	metrics   *MetricsService
	offsets   map[int]struct{}
	portalURL string
	logger    *zap.Logger
}

// NewReminderService wires the evaluator. Offsets default to 7, 3 and 1 days.
func NewReminderService(
	semesters semesterReader,
	fees feeStructureReader,
	students studentLister,
	payments verifiedPaymentChecker,
	push pushSender,
	email emailSender,
	ledger notificationLedger,
	guard reminderGuard,
	pool *jobs.Pool,
	metrics *MetricsService,
	cfg ReminderConfig,
	logger *zap.Logger,
) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pool == nil {
		pool = jobs.NewPool(1, logger)
	}
	if len(cfg.Offsets) == 0 {
		cfg.Offsets = []int{7, 3, 1}
	}
	offsets := make(map[int]struct{}, len(cfg.Offsets))
	for _, offset := range cfg.Offsets {
		offsets[offset] = struct{}{}
	}
	return &ReminderService{
		semesters: semesters,
		fees:      fees,
		students:  students,
		payments:  payments,
		push:      push,
		email:     email,
		ledger:    ledger,
		guard:     guard,
		pool:      pool,
		metrics:   metrics,
		offsets:   offsets,
		portalURL: cfg.PortalURL,
		logger:    logger,
	}
}

// RunPushReminders walks every active semester's fee structures and pushes a
// reminder to each pending student whose deadline falls on a reminder offset.
func (s *ReminderService) RunPushReminders(ctx context.Context, now time.Time) (*ReminderRunStats, error) {
	semesters, err := s.semesters.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to list active semesters")
	}

	stats := &ReminderRunStats{Semesters: len(semesters)}
	var sent, failed, skipped atomic.Int64

	for _, semester := range semesters {
		structures, err := s.fees.ListBySemester(ctx, semester.ID)
		if err != nil {
			s.logger.Error("skipping semester, fee structures unavailable",
				zap.String("semester_id", semester.ID), zap.Error(err))
			continue
		}

		for _, fee := range structures {
			if fee.Deadline == nil {
				continue
			}
			days := daysUntil(*fee.Deadline, now)
			if !s.offsetDue(days) {
				continue
			}

			tasks, err := s.buildPushTasks(ctx, semester, fee, days, now, &sent, &failed, &skipped)
			if err != nil {
				s.logger.Error("skipping fee structure, student lookup failed",
					zap.String("fee_structure_id", fee.ID), zap.Error(err))
				continue
			}
			s.pool.Run(ctx, tasks)
		}
	}

	stats.Sent = int(sent.Load())
	stats.Failed = int(failed.Load())
	stats.Skipped = int(skipped.Load())
	s.logger.Info("push reminder run completed",
		zap.Int("semesters", stats.Semesters), zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func (s *ReminderService) buildPushTasks(
	ctx context.Context,
	semester models.Semester,
	fee models.FeeStructure,
	days int,
	now time.Time,
	sent, failed, skipped *atomic.Int64,
) ([]jobs.Task, error) {
	students, err := s.students.List(ctx, models.StudentFilter{
		Role:          models.RoleStudent,
		Dept:          fee.Dept,
		QuotaCategory: fee.QuotaCategory,
		Status:        models.StudentStatusPending,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]jobs.Task, 0, len(students))
	for _, student := range students {
		student := student
		if student.FCMToken == "" {
			s.logger.Warn("no fcm token for student", zap.String("student_id", student.ID))
			skipped.Add(1)
			continue
		}
		outstanding := fee.Amount - student.PaidFee
		if outstanding <= 0 {
			continue
		}
		if !s.claim(ctx, dedupe.ReminderKey(models.ChannelPush, student.ID, fee.ID, days, now)) {
			skipped.Add(1)
			continue
		}

		title := "Fee Payment Reminder"
		body := fmt.Sprintf("Your fee payment deadline is in %d day(s). Amount due: ₹%d", days, outstanding)
		data := models.Payload{
			"type":          models.NotificationPaymentReminder,
			"amount":        strconv.FormatInt(outstanding, 10),
			"deadline":      fee.Deadline.Format(time.RFC3339),
			"daysRemaining": strconv.Itoa(days),
		}

		tasks = append(tasks, func(taskCtx context.Context) {
			messageID, err := s.push.Send(taskCtx, messaging.PushMessage{
				Token: student.FCMToken,
				Title: title,
				Body:  body,
				Data:  data,
				Color: messaging.ColorReminder,
			})
			s.observeSend(models.ChannelPush, models.NotificationPaymentReminder, err == nil)
			if err != nil {
				s.logger.Error("failed to send push reminder",
					zap.String("student_id", student.ID), zap.Error(err))
				failed.Add(1)
				return
			}
			sent.Add(1)
			s.record(taskCtx, &models.Notification{
				UserID:       student.ID,
				Type:         models.NotificationPaymentReminder,
				Channel:      models.ChannelPush,
				Title:        title,
				Body:         body,
				Data:         data,
				FCMMessageID: messageID,
			})
		})
	}
	return tasks, nil
}

// RunEmailReminders evaluates the term-end and fee-structure deadline paths
// for every active semester and emails qualifying students.
func (s *ReminderService) RunEmailReminders(ctx context.Context, now time.Time) (*ReminderRunStats, error) {
	semesters, err := s.semesters.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to list active semesters")
	}

	stats := &ReminderRunStats{Semesters: len(semesters)}
	var sent, failed, skipped atomic.Int64

	for _, semester := range semesters {
		if tasks, err := s.buildTermEndTasks(ctx, semester, now, &sent, &failed, &skipped); err != nil {
			s.logger.Error("skipping term-end reminders, student lookup failed",
				zap.String("semester_id", semester.ID), zap.Error(err))
		} else {
			s.pool.Run(ctx, tasks)
		}

		structures, err := s.fees.ListBySemester(ctx, semester.ID)
		if err != nil {
			s.logger.Error("skipping semester, fee structures unavailable",
				zap.String("semester_id", semester.ID), zap.Error(err))
			continue
		}
		for _, fee := range structures {
			if fee.Deadline == nil {
				continue
			}
			days := daysUntil(*fee.Deadline, now)
			if !s.offsetDue(days) {
				continue
			}
			tasks, err := s.buildDeadlineEmailTasks(ctx, semester, fee, days, now, &sent, &failed, &skipped)
			if err != nil {
				s.logger.Error("skipping fee structure, student lookup failed",
					zap.String("fee_structure_id", fee.ID), zap.Error(err))
				continue
			}
			s.pool.Run(ctx, tasks)
		}
	}

	stats.Sent = int(sent.Load())
	stats.Failed = int(failed.Load())
	stats.Skipped = int(skipped.Load())
	s.logger.Info("email reminder run completed",
		zap.Int("semesters", stats.Semesters), zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func (s *ReminderService) buildTermEndTasks(
	ctx context.Context,
	semester models.Semester,
	now time.Time,
	sent, failed, skipped *atomic.Int64,
) ([]jobs.Task, error) {
	days := daysUntil(semester.EndDate, now)
	if !s.offsetDue(days) {
		return nil, nil
	}

	students, err := s.students.List(ctx, models.StudentFilter{
		Role:  models.RoleStudent,
		Batch: semester.AcademicYear,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]jobs.Task, 0, len(students))
	for _, student := range students {
		student := student
		if student.PaidFee >= student.TotalFee {
			continue
		}
		if student.Email == "" {
			skipped.Add(1)
			continue
		}
		if !s.claim(ctx, dedupe.ReminderKey(models.ChannelEmail, student.ID, semester.ID, days, now)) {
			skipped.Add(1)
			continue
		}

		outstanding := student.OutstandingFee()
		html, err := messaging.RenderFinalReminder(messaging.FinalReminderEmail{
			Name:        student.Name,
			EndDate:     semester.EndDate,
			Outstanding: outstanding,
			DaysLeft:    days,
			PortalURL:   s.portalURL,
		})
		if err != nil {
			s.logger.Error("failed to render final reminder", zap.Error(err))
			failed.Add(1)
			continue
		}
		subject := messaging.FinalReminderSubject(days)

		tasks = append(tasks, func(taskCtx context.Context) {
			err := s.email.Send(taskCtx, messaging.EmailMessage{
				To:      student.Email,
				ToName:  student.Name,
				Subject: subject,
				HTML:    html,
			})
			s.observeSend(models.ChannelEmail, models.NotificationFinalReminder, err == nil)
			if err != nil {
				s.logger.Error("failed to send final reminder email",
					zap.String("student_id", student.ID), zap.Error(err))
				failed.Add(1)
				return
			}
			sent.Add(1)
			s.record(taskCtx, &models.Notification{
				UserID:  student.ID,
				Type:    models.NotificationFinalReminder,
				Channel: models.ChannelEmail,
				Title:   subject,
				Body:    fmt.Sprintf("Outstanding dues of ₹%d before semester ends on %s", outstanding, semester.EndDate.Format("02 Jan 2006")),
				Data: models.Payload{
					"type":          models.NotificationFinalReminder,
					"amount":        strconv.FormatInt(outstanding, 10),
					"endDate":       semester.EndDate.Format(time.RFC3339),
					"daysRemaining": strconv.Itoa(days),
				},
			})
		})
	}
	return tasks, nil
}

func (s *ReminderService) buildDeadlineEmailTasks(
	ctx context.Context,
	semester models.Semester,
	fee models.FeeStructure,
	days int,
	now time.Time,
	sent, failed, skipped *atomic.Int64,
) ([]jobs.Task, error) {
	students, err := s.students.List(ctx, models.StudentFilter{
		Role:          models.RoleStudent,
		Dept:          fee.Dept,
		QuotaCategory: fee.QuotaCategory,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]jobs.Task, 0, len(students))
	for _, student := range students {
		student := student
		paid, err := s.payments.HasVerified(ctx, student.ID, semester.ID)
		if err != nil {
			s.logger.Error("failed to check verified payment",
				zap.String("student_id", student.ID), zap.Error(err))
			failed.Add(1)
			continue
		}
		if paid {
			continue
		}
		if student.Email == "" {
			skipped.Add(1)
			continue
		}
		if !s.claim(ctx, dedupe.ReminderKey(models.ChannelEmail, student.ID, fee.ID, days, now)) {
			skipped.Add(1)
			continue
		}

		html, err := messaging.RenderDeadlineReminder(messaging.DeadlineReminderEmail{
			Name:     student.Name,
			FeeName:  fee.FeeName,
			Amount:   fee.Amount,
			Deadline: *fee.Deadline,
			DaysLeft: days,
		})
		if err != nil {
			s.logger.Error("failed to render deadline reminder", zap.Error(err))
			failed.Add(1)
			continue
		}
		subject := messaging.DeadlineReminderSubject(days)

		tasks = append(tasks, func(taskCtx context.Context) {
			err := s.email.Send(taskCtx, messaging.EmailMessage{
				To:      student.Email,
				ToName:  student.Name,
				Subject: subject,
				HTML:    html,
			})
			s.observeSend(models.ChannelEmail, models.NotificationPaymentReminder, err == nil)
			if err != nil {
				s.logger.Error("failed to send deadline reminder email",
					zap.String("student_id", student.ID), zap.Error(err))
				failed.Add(1)
				return
			}
			sent.Add(1)
			s.record(taskCtx, &models.Notification{
				UserID:  student.ID,
				Type:    models.NotificationPaymentReminder,
				Channel: models.ChannelEmail,
				Title:   subject,
				Body:    fmt.Sprintf("Deadline for %s is in %d day(s). Amount: ₹%d", fee.FeeName, days, fee.Amount),
				Data: models.Payload{
					"type":          models.NotificationPaymentReminder,
					"amount":        strconv.FormatInt(fee.Amount, 10),
					"deadline":      fee.Deadline.Format(time.RFC3339),
					"daysRemaining": strconv.Itoa(days),
				},
			})
		})
	}
	return tasks, nil
}

func (s *ReminderService) offsetDue(days int) bool {
	_, ok := s.offsets[days]
	return ok
}

// claim acquires the write-once marker for a reminder. Guard outages do not
// suppress reminders: a missed marker risks a duplicate, a suppressed send
// risks a student never hearing about a deadline.
func (s *ReminderService) claim(ctx context.Context, key string) bool {
	if s.guard == nil {
		return true
	}
	ok, err := s.guard.Acquire(ctx, key)
	if err != nil {
		s.logger.Warn("dedupe guard unavailable, sending anyway", zap.Error(err))
		return true
	}
	return ok
}

func (s *ReminderService) record(ctx context.Context, n *models.Notification) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, n); err != nil {
		s.logger.Error("failed to ledger notification",
			zap.String("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *ReminderService) observeSend(channel, notificationType string, ok bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSend(channel, notificationType, ok)
}

// daysUntil is the ceiling of the distance to target in whole days. A target
// earlier than now yields zero or a negative count, which never matches a
// reminder offset.
func daysUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}
