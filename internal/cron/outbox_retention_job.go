package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	defaultOutboxRetention = 7 * 24 * time.Hour
	defaultDLQRetention    = 30 * 24 * time.Hour
)

type OutboxRetentionJobParams struct {
	DB          txRunner
	Repository  outboxRetentionRepo
	DeadLetters dlqRetentionRepo
	Retention   time.Duration
	// DLQRetention applies only when DeadLetters is set.
	DLQRetention time.Duration
	Now          func() time.Time
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type dlqRetentionRepo interface {
	DeleteBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewOutboxRetentionJob deletes relayed outbox rows older than the retention
// and, when configured, stale dead letters. Unpublished rows are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	job := &outboxRetentionJob{
		db:           params.DB,
		repo:         params.Repository,
		dlq:          params.DeadLetters,
		retention:    params.Retention,
		dlqRetention: params.DLQRetention,
		now:          params.Now,
	}
	if job.retention <= 0 {
		job.retention = defaultOutboxRetention
	}
	if job.dlqRetention <= 0 {
		job.dlqRetention = defaultDLQRetention
	}
	if job.now == nil {
		job.now = time.Now
	}
	return job, nil
}

type outboxRetentionJob struct {
	db           txRunner
	repo         outboxRetentionRepo
	dlq          dlqRetentionRepo
	retention    time.Duration
	dlqRetention time.Duration
	now          func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox_retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.repo.DeletePublishedBefore(tx, now.Add(-j.retention))
		if err != nil {
			return fmt.Errorf("delete published outbox rows: %w", err)
		}
		deleted = n
		if j.dlq == nil {
			return nil
		}
		n, err = j.dlq.DeleteBefore(tx, now.Add(-j.dlqRetention))
		if err != nil {
			return fmt.Errorf("delete dead letters: %w", err)
		}
		deleted += n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
