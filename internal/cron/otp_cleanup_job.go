package cron

import (
	"context"
	"fmt"
)

type otpSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewOTPCleanupJob removes one-time passcodes past their TTL.
func NewOTPCleanupJob(otps otpSweeper) (Job, error) {
	if otps == nil {
		return nil, fmt.Errorf("otp service required")
	}
	return &otpCleanupJob{otps: otps}, nil
}

type otpCleanupJob struct {
	otps otpSweeper
}

func (j *otpCleanupJob) Name() string { return "otp_cleanup" }

func (j *otpCleanupJob) Run(ctx context.Context) (int64, error) {
	return j.otps.DeleteExpired(ctx)
}
