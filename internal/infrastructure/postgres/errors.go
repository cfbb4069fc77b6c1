package postgres

import (
	"errors"
	"fmt"
	"net"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// wrapErr folds connection-level failures into domain.ErrStoreUnavailable
// so handlers can answer 503 instead of 500 when the store is unreachable.
func wrapErr(op string, err error) error {
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
