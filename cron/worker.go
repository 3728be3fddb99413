package cron

import (
	"context"
	"time"

	"fixerhub/config"
	"fixerhub/services/notification"
	"fixerhub/services/tasks"
	"fixerhub/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReconcileSchedule is how often provider scores are recomputed.
const ReconcileSchedule = "@every 1h"

// Reconciler recomputes provider certification counters.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// Worker runs the asynq server that delivers notifications and the scheduler that queues
// periodic maintenance.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// RedisOpt is the asynq connection for the configured queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

func NewWorker(email notification.EmailSender, push notification.PushSender, reconciler Reconciler) *Worker {
	opt := RedisOpt()
	logger := utils.GetLogger()

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			tasks.QueueNotifications: 6,
			tasks.QueueMaintenance:   1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warn("task failed",
				zap.String("type", task.Type()),
				zap.Int("retry", retried),
				zap.Int("maxRetry", maxRetry),
				zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailSend, HandleEmailTask(email))
	mux.HandleFunc(tasks.TypePushSend, HandlePushTask(push))
	mux.HandleFunc(tasks.TypeScoreReconcile, HandleReconcileTask(reconciler))

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})

	return &Worker{server: srv, scheduler: scheduler, mux: mux}
}

// Start runs the server and scheduler in the background. Startup is retried with backoff.
func (w *Worker) Start() error {
	if _, err := w.scheduler.Register(ReconcileSchedule, tasks.NewReconcileTask()); err != nil {
		return err
	}
	if err := w.scheduler.Start(); err != nil {
		return err
	}

	go func() {
		logger := utils.GetLogger()
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := w.server.Start(w.mux)
			if err == nil {
				logger.Info("task worker started")
				return
			}
			logger.Warn("task worker failed to start",
				zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		logger.Error("task worker gave up starting")
	}()
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func HandleEmailTask(sender notification.EmailSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.DecodeEmail(task)
		if err != nil {
			return err
		}
		return sender.Send(ctx, p)
	}
}

func HandlePushTask(sender notification.PushSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.DecodePush(task)
		if err != nil {
			return err
		}
		return sender.Send(ctx, p)
	}
}

func HandleReconcileTask(r Reconciler) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		started := time.Now()
		changed, err := r.Reconcile(ctx)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("certification scores reconciled",
			zap.Int("changed", changed), zap.Duration("took", time.Since(started)))
		return nil
	}
}
