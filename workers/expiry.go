package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"rentiva/config"
	"rentiva/services/checkout"
)

const TypeCheckoutExpire = "checkout:expire"

// ExpirePayload identifies the session whose payment window has lapsed.
type ExpirePayload struct {
	UserID string `json:"userId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// AsynqExpiryScheduler enqueues deferred expiry tasks. It implements
// checkout.ExpiryScheduler.
type AsynqExpiryScheduler struct {
	Client *asynq.Client
}

// NewExpiryScheduler builds the scheduler on the queue redis DB.
func NewExpiryScheduler() *AsynqExpiryScheduler {
	return &AsynqExpiryScheduler{Client: asynq.NewClient(redisOpts())}
}

// ScheduleExpiry queues one expiry for the user's session after delay.
func (s *AsynqExpiryScheduler) ScheduleExpiry(ctx context.Context, userID string, delay time.Duration) error {
	payload, err := json.Marshal(ExpirePayload{UserID: userID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeCheckoutExpire, payload)
	_, err = s.Client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	return err
}

// InitExpiryWorker runs the async worker in background.
func InitExpiryWorker(svc checkout.CheckoutService, logger *zap.Logger) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCheckoutExpire, handleExpireTask(svc, logger))

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(svc checkout.CheckoutService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid expiry payload", zap.Error(err))
			return err
		}

		if err := svc.ExpireSession(ctx, p.UserID); err != nil {
			logger.Error("failed to expire checkout session",
				zap.String("userId", p.UserID), zap.Error(err))
			return err
		}
		return nil
	}
}
