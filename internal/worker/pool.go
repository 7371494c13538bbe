package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coach-backend/internal/models"
	"coach-backend/internal/services"
)

const maxRetries = 3

type replier interface {
	Reply(ctx context.Context, userID uuid.UUID, text string) (*models.CoachReply, error)
}

type jobStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateError(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
	Complete(ctx context.Context, id uuid.UUID, result any) error
}

// errUpstream marks a turn whose completion failed. The apology is already in
// the transcript, so the job is not retried.
var errUpstream = errors.New("completion provider unavailable")

// Pool runs queued coach turns.
type Pool struct {
	redis       *redis.Client
	coach       replier
	jobRepo     jobStore
	publisher   services.Publisher
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	coach replier,
	jobRepo jobStore,
	publisher services.Publisher,
	workerCount int,
) *Pool {
	if publisher == nil {
		publisher = services.NopPublisher{}
	}
	return &Pool{
		redis:       redisClient,
		coach:       coach,
		jobRepo:     jobRepo,
		publisher:   publisher,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, models.QueueCoachReply).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)
		p.Process(ctx, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// Process runs one job to completion or failure and publishes the outcome.
func (p *Pool) Process(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "processing")
	p.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type: models.EventStatusUpdate,
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			Step:     1,
			StepName: "Coach is writing",
		},
	})

	var (
		reply *models.CoachReply
		err   error
	)
	switch job.Type {
	case models.JobTypeCoachReply:
		reply, err = p.processCoachReply(ctx, job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		p.handleFailure(ctx, job, err)
		return
	}
	p.handleSuccess(ctx, job, reply)
}

func (p *Pool) processCoachReply(ctx context.Context, job *models.Job) (*models.CoachReply, error) {
	var config models.CoachJobConfig
	if err := json.Unmarshal(job.ConfigJSON, &config); err != nil {
		return nil, fmt.Errorf("invalid job config: %w", err)
	}

	reply, err := p.coach.Reply(ctx, job.UserID, config.Message)
	if err != nil {
		return nil, err
	}
	if reply.UpstreamFailed {
		return nil, errUpstream
	}
	return reply, nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, reply *models.CoachReply) {
	if err := p.jobRepo.Complete(ctx, job.ID, reply); err != nil {
		log.Printf("failed to store result of job %s: %v", job.ID, err)
	}

	p.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type: models.EventJobCompleted,
		Payload: models.CompletedEvent{
			JobID: job.ID,
			Reply: *reply,
		},
	})

	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if retryable(err) && job.RetryCount < maxRetries && p.redis != nil {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), models.QueueCoachReply, string(jobBytes))
		})
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

	p.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type: models.EventJobFailed,
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    errorCode(err),
			ErrorMessage: errMsg,
		},
	})
}

// retryable is false once a turn may have written the transcript, and for
// input the coach rejected.
func retryable(err error) bool {
	var validation *services.ValidationError
	if errors.As(err, &validation) || errors.Is(err, errUpstream) {
		return false
	}
	return true
}

func errorCode(err error) string {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		return "VALIDATION_ERROR"
	case errors.Is(err, errUpstream):
		return "AI_ERROR"
	}
	return "JOB_FAILED"
}
