// Package users is the user directory (account profiles) together with the
// social graph mutator that keeps both sides of the follow relation in step.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talon/database"
	"talon/errs"
	"talon/types"
)

type Directory struct {
	db     database.Store
	logger *zap.Logger
}

func New(db database.Store, logger *zap.Logger) *Directory {
	return &Directory{db: db, logger: logger}
}

type CreateParams struct {
	FullName string
	Email    string
	// Password is the already-hashed credential; hashing is the caller's
	// collaborator, the directory just stores the opaque value.
	Password            string
	Location            string
	DOB                 string
	Bio                 string
	ProfileImg          string
	BackgroundWallpaper string
}

func (p CreateParams) validate() error {
	if p.FullName == "" || p.Email == "" || p.Password == "" || p.Location == "" || p.DOB == "" {
		return errs.New(errs.Validation, "fullName, email, password, location and DOB are mandatory")
	}

	return nil
}

func (d *Directory) Create(ctx context.Context, p CreateParams) (*types.User, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	_, err := d.db.Users().ByEmail(ctx, p.Email)
	if err == nil {
		return nil, errs.New(errs.Conflict, "user with email %s already exists", p.Email)
	}

	if !errs.IsKind(err, errs.NotFound) {
		return nil, err
	}

	user := &types.User{
		ID:                  uuid.New(),
		FullName:            p.FullName,
		Email:               p.Email,
		Password:            p.Password,
		Location:            p.Location,
		DOB:                 p.DOB,
		Bio:                 p.Bio,
		ProfileImg:          p.ProfileImg,
		BackgroundWallpaper: p.BackgroundWallpaper,
		Followers:           []uuid.UUID{},
		Following:           []uuid.UUID{},
		CreatedAt:           time.Now(),
	}

	if err := d.db.Users().Insert(ctx, user); err != nil {
		return nil, err
	}

	d.logger.Info("user created", zap.String("user", user.ID.String()))

	return user, nil
}

func (d *Directory) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return d.db.Users().Get(ctx, id)
}

// Authenticate matches the stored credential for the email. The password is
// compared as the same opaque pre-hashed value the account was created with.
// Unknown email and wrong password share one Unauthorized outcome so the
// response does not leak which emails have accounts.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*types.User, error) {
	user, err := d.db.Users().ByEmail(ctx, email)
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.New(errs.Unauthorized, "invalid email or password")
		}

		return nil, err
	}

	if user.Password != password {
		return nil, errs.New(errs.Unauthorized, "invalid email or password")
	}

	return user, nil
}

// UpdateParams is a partial profile update; nil fields are left untouched.
// Email, password and the follow sets are not updatable through this path.
type UpdateParams struct {
	FullName            *string
	Location            *string
	DOB                 *string
	Bio                 *string
	ProfileImg          *string
	BackgroundWallpaper *string
}

func (d *Directory) UpdateProfile(ctx context.Context, id uuid.UUID, p UpdateParams) (*types.User, error) {
	return d.db.Users().Update(ctx, id, func(u *types.User) error {
		set := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}

		set(&u.FullName, p.FullName)
		set(&u.Location, p.Location)
		set(&u.DOB, p.DOB)
		set(&u.Bio, p.Bio)
		set(&u.ProfileImg, p.ProfileImg)
		set(&u.BackgroundWallpaper, p.BackgroundWallpaper)

		return nil
	})
}

func (d *Directory) Search(ctx context.Context, key string) ([]types.User, error) {
	return d.db.Users().Search(ctx, key)
}

// Follow appends followerID to the target's followers and targetID to the
// follower's following, then returns the follower's refreshed record. There
// is no duplicate check: following twice records two entries on both sides,
// which keeps the redundant sets consistent with each other.
func (d *Directory) Follow(ctx context.Context, followerID, targetID uuid.UUID) (*types.User, error) {
	if followerID == targetID {
		return nil, errs.New(errs.Validation, "a user cannot follow themselves")
	}

	g := graphWrite{
		op:       "follow",
		follower: followerID,
		target:   targetID,
		first: func(st database.Store) error {
			_, err := st.Users().Update(ctx, targetID, func(u *types.User) error {
				u.Followers = append(u.Followers, followerID)
				return nil
			})

			return err
		},
		second: func(st database.Store) error {
			_, err := st.Users().Update(ctx, followerID, func(u *types.User) error {
				u.Following = append(u.Following, targetID)
				return nil
			})

			return err
		},
		undoFirst: func() error {
			_, err := d.db.Users().Update(ctx, targetID, func(u *types.User) error {
				u.Followers = removeOne(u.Followers, followerID)
				return nil
			})

			return err
		},
	}

	if err := d.twoSided(ctx, g); err != nil {
		return nil, err
	}

	return d.db.Users().Get(ctx, followerID)
}

// Unfollow removes every occurrence on both sides, mirroring Follow.
func (d *Directory) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) (*types.User, error) {
	if followerID == targetID {
		return nil, errs.New(errs.Validation, "a user cannot unfollow themselves")
	}

	var priorFollowers []uuid.UUID

	g := graphWrite{
		op:       "unfollow",
		follower: followerID,
		target:   targetID,
		first: func(st database.Store) error {
			_, err := st.Users().Update(ctx, targetID, func(u *types.User) error {
				priorFollowers = append([]uuid.UUID(nil), u.Followers...)
				u.Followers = removeAllIDs(u.Followers, followerID)
				return nil
			})

			return err
		},
		second: func(st database.Store) error {
			_, err := st.Users().Update(ctx, followerID, func(u *types.User) error {
				u.Following = removeAllIDs(u.Following, targetID)
				return nil
			})

			return err
		},
		undoFirst: func() error {
			_, err := d.db.Users().Update(ctx, targetID, func(u *types.User) error {
				u.Followers = priorFollowers
				return nil
			})

			return err
		},
	}

	if err := d.twoSided(ctx, g); err != nil {
		return nil, err
	}

	return d.db.Users().Get(ctx, followerID)
}

// graphWrite is one two-sided follow graph mutation: two per-document writes
// plus the compensation that reverses the first.
type graphWrite struct {
	op               string
	follower, target uuid.UUID
	first, second    func(database.Store) error
	undoFirst        func() error
}

// twoSided runs both writes inside one transactional boundary when the store
// offers one; otherwise it degrades to a saga where a failed second write
// triggers the compensation, and a failed compensation is surfaced as
// PartialFailure instead of a misleading success.
func (d *Directory) twoSided(ctx context.Context, g graphWrite) error {
	err := d.db.Atomically(ctx, func(tx database.Store) error {
		if err := g.first(tx); err != nil {
			return err
		}

		return g.second(tx)
	})

	if errors.Is(err, database.ErrNoTransactions) {
		err = d.twoSidedSaga(ctx, g)
	}

	return err
}

func (d *Directory) twoSidedSaga(ctx context.Context, g graphWrite) error {
	// The second side must exist before the first write lands, or the saga
	// would mutate the target and then fail on a follower that was never
	// there.
	if _, err := d.db.Users().Get(ctx, g.follower); err != nil {
		return err
	}

	if err := g.first(d.db); err != nil {
		return err
	}

	err := g.second(d.db)
	if err == nil {
		return nil
	}

	if undoErr := g.undoFirst(); undoErr != nil {
		d.logger.Error("follow graph compensation failed, graph is asymmetric",
			zap.String("op", g.op),
			zap.String("follower", g.follower.String()),
			zap.String("target", g.target.String()),
			zap.Error(undoErr))

		return errs.Wrap(errs.PartialFailure, err, "%s of %s by %s applied partially and could not be rolled back", g.op, g.target, g.follower)
	}

	return err
}

func removeOne(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	for i, id := range ids {
		if id == target {
			return append(append([]uuid.UUID{}, ids[:i]...), ids[i+1:]...)
		}
	}

	return ids
}

func removeAllIDs(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}

	return out
}
