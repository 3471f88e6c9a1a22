package job

import (
	"context"

	"github.com/steveyeow/academi/internal/service"
)

// VotePromotionJob sweeps the wishlist for titles that crossed the vote
// threshold but never made it into the catalog.
type VotePromotionJob struct {
	discovery *service.DiscoveryService
}

func NewVotePromotionJob(discovery *service.DiscoveryService) *VotePromotionJob {
	return &VotePromotionJob{discovery: discovery}
}

func (j *VotePromotionJob) Name() string {
	return "vote_promotion"
}

func (j *VotePromotionJob) Run(ctx context.Context) error {
	if j.discovery == nil {
		return nil
	}
	return j.discovery.PromotePendingVotes(ctx)
}
