package repositories

import (
	"context"

	"github.com/chaitudev/lyra/domain/entities"
)

// HistoryRepository defines data access methods for conversation exchanges
type HistoryRepository interface {
	// Append records one completed request/reply exchange
	Append(ctx context.Context, exchange *entities.Exchange) error
	// Recent returns up to limit exchanges, newest last
	Recent(ctx context.Context, limit int) ([]*entities.Exchange, error)
}
