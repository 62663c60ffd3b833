package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type record[T any] interface {
	*T
	Meta() *domain.RecordMeta
}

// getOwned loads a record and hides records of other users behind the
// kind's not-found error.
func getOwned[T any, P record[T]](ctx context.Context, repo domain.Repository[T], id, userID string, notFound error) (*T, error) {
	rec, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !P(rec).Meta().OwnedBy(userID) {
		return nil, notFound
	}
	return rec, nil
}
