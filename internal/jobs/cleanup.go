package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medvault/share-server-go/internal/repository"
)

// CleanupJob prunes expired auth sessions in the background. Share tokens
// and access logs are deliberately left alone: expired tokens stay on record
// for the patient's history, and access logs are immutable.
type CleanupJob struct {
	userRepo repository.UserRepository
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(userRepo repository.UserRepository, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		userRepo: userRepo,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.done:
			return
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := j.userRepo.DeleteExpiredSessions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete expired sessions")
		return
	}
	if deleted > 0 {
		log.Info().Int64("count", deleted).Msg("deleted expired sessions")
	}
}
