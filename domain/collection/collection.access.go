package collection

import (
	"context"
)

// Access is the resolved relationship between an identity and a
// collection: owner, grant holder, or neither.
type Access int

const (
	AccessDenied Access = iota
	AccessGranted
	AccessOwner
)

// CanRead covers item listing and like state; grants and ownership both
// qualify. The public read path never consults this and filters on the
// public flag alone.
func (a Access) CanRead() bool {
	return a != AccessDenied
}

type (
	AccessResolver interface {
		Resolve(ctx context.Context, userId uint, collection *Collection) (Access, error)
	}

	accessResolver struct {
		collectionRepo Repository
	}
)

func CreateAccessResolver(collectionRepo Repository) AccessResolver {
	return &accessResolver{
		collectionRepo: collectionRepo,
	}
}

func (r *accessResolver) Resolve(ctx context.Context, userId uint, collection *Collection) (Access, error) {
	if collection.OwnerID == userId {
		return AccessOwner, nil
	}

	granted, err := r.collectionRepo.HasGrant(ctx, userId, collection.ID)
	if err != nil {
		return AccessDenied, err
	}
	if granted {
		return AccessGranted, nil
	}

	return AccessDenied, nil
}
