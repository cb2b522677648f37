package firebase

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/msomdec/task-tracker/internal/domain"
)

// writeError maps a Firestore write failure onto the domain taxonomy.
func writeError(op string, err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrWriteDenied, err)
	case codes.NotFound:
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// listenError maps the terminal error of a live query.
func listenError(err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", domain.ErrSubscriptionDenied, err)
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("listen tasks: %w", err)
}

// isRejectedSignIn reports whether the Identity Toolkit refused the
// credentials, as opposed to failing for transport reasons.
func isRejectedSignIn(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest
}
