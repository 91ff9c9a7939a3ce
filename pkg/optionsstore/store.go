package optionsstore

import (
	"context"
	"time"

	"github.com/core-tools/hsu-deploy/pkg/deployment"
)

// Record is a named DeploymentOptions value as persisted by a Store
type Record struct {
	ID        string
	Name      string
	Options   *deployment.DeploymentOptions
	Hash      uint64
	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Changed is false when Put found an equal value already stored
	Changed bool
}

// Store persists named deployment options
type Store interface {
	Put(ctx context.Context, name string, options *deployment.DeploymentOptions) (*Record, error)
	Get(ctx context.Context, name string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, name string) error
	Close() error
}
