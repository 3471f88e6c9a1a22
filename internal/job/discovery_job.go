package job

import (
	"context"

	"github.com/steveyeow/academi/internal/service"
)

// DiscoveryJob periodically grows the thinnest catalog categories.
type DiscoveryJob struct {
	discovery *service.DiscoveryService
}

func NewDiscoveryJob(discovery *service.DiscoveryService) *DiscoveryJob {
	return &DiscoveryJob{discovery: discovery}
}

func (j *DiscoveryJob) Name() string {
	return "book_discovery"
}

func (j *DiscoveryJob) Run(ctx context.Context) error {
	if j.discovery == nil {
		return nil
	}
	return j.discovery.RunScheduledDiscovery(ctx)
}
