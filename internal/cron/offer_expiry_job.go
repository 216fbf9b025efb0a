package cron

import (
	"context"
	"fmt"
)

type offerExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// NewOfferExpiryJob clears the discounts of offers past their end date and
// removes the offers.
func NewOfferExpiryJob(offers offerExpirer) (Job, error) {
	if offers == nil {
		return nil, fmt.Errorf("offers service required")
	}
	return &offerExpiryJob{offers: offers}, nil
}

type offerExpiryJob struct {
	offers offerExpirer
}

func (j *offerExpiryJob) Name() string { return "offer_expiry" }

// Run reports retired offers even when some failed.
func (j *offerExpiryJob) Run(ctx context.Context) (int64, error) {
	n, err := j.offers.ExpireDue(ctx)
	return int64(n), err
}
