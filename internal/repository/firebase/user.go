package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/msomdec/task-tracker/internal/domain"
)

type userDoc struct {
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	Role      string    `firestore:"role"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

// UserRepository keeps one document per identity in the users collection,
// keyed by the Firebase UID.
type UserRepository struct {
	users *firestore.CollectionRef
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := userDoc{Email: user.Email, Name: user.Name, Role: string(user.Role)}
	wr, err := r.users.Doc(user.ID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrDuplicateAccount
		}
		return writeError("create user record", err)
	}
	user.CreatedAt = wr.UpdateTime
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	snap, err := r.users.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user record: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return &domain.User{
		ID:        snap.Ref.ID,
		Email:     doc.Email,
		Name:      doc.Name,
		Role:      domain.Role(doc.Role),
		CreatedAt: doc.CreatedAt,
	}, nil
}
