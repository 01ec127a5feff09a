package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// ErrNoProfile is returned when a profile patch targets a user without one.
var ErrNoProfile = errors.New("user profile not found")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(database *PostgresDB) *UserRepository {
	return &UserRepository{db: database.Conn}
}

// List returns all users. The role is always loaded.
func (r *UserRepository) List(ctx context.Context, inc models.Include) ([]models.User, error) {
	users, err := queryAll(ctx, r.db, scanUser, "SELECT "+userColumns+" FROM "+userFrom+" ORDER BY u.id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, r.load(ctx, users, inc)
}

func (r *UserRepository) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]models.User, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM users")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	users, err := queryAll(ctx, r.db, scanUser,
		"SELECT "+userColumns+" FROM "+userFrom+" ORDER BY u.id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	return users, total, r.load(ctx, users, inc)
}

func (r *UserRepository) Get(ctx context.Context, id int, inc models.Include) (*models.User, error) {
	return r.getWhere(ctx, "u.id = $1", id, inc)
}

func (r *UserRepository) getWhere(ctx context.Context, cond string, arg any, inc models.Include) (*models.User, error) {
	u, err := queryOne(ctx, r.db, scanUser, "SELECT "+userColumns+" FROM "+userFrom+" WHERE "+cond, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	one := []models.User{*u}
	if err := r.load(ctx, one, inc); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// RoleByName returns nil when no role has that name.
func (r *UserRepository) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	role, err := queryOne(ctx, r.db, func(s scanner, role *models.Role) error {
		return s.Scan(&role.ID, &role.Name)
	}, "SELECT id, name FROM roles WHERE name = $1", name)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// Create inserts the profile and the user in one transaction.
func (r *UserRepository) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var profileID int
	err = tx.QueryRowContext(ctx,
		"INSERT INTO profiles (first_name, last_name) VALUES ($1, $2) RETURNING id",
		nu.FirstName, nu.LastName).Scan(&profileID)
	if err != nil {
		return nil, wrapWrite("insert profile", err)
	}

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (firebase_uid, email, password, profile_id, role_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		nu.FirebaseUID, nu.Email, nu.PasswordHash, profileID, nu.RoleID).Scan(&id)
	if err != nil {
		return nil, wrapWrite("insert user", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.Get(ctx, id, models.Include{models.RelProfile})
}

// Update patches the user row and its profile in one transaction. The role
// is changed by pointing the user at another role row; role rows are never
// modified. A missing user yields (nil, nil).
func (r *UserRepository) Update(ctx context.Context, id int, ch models.UserChanges) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var profileID sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT profile_id FROM users WHERE id = $1 FOR UPDATE", id).Scan(&profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	if ch.FirstName != nil || ch.LastName != nil {
		if !profileID.Valid {
			return nil, ErrNoProfile
		}
		var pu updateSet
		if ch.FirstName != nil {
			pu.set("first_name", *ch.FirstName)
		}
		if ch.LastName != nil {
			pu.set("last_name", *ch.LastName)
		}
		q, args := pu.build("profiles", int(profileID.Int64))
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, wrapWrite("update profile", err)
		}
	}

	var u updateSet
	if ch.Email != nil {
		u.set("email", *ch.Email)
	}
	if ch.PasswordHash != nil {
		u.set("password", *ch.PasswordHash)
	}
	if ch.RoleID != nil {
		u.set("role_id", *ch.RoleID)
	}
	if !u.empty() {
		q, args := u.build("users", id)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, wrapWrite("update user", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.Get(ctx, id, models.Include{models.RelProfile})
}

// Delete removes the user and its profile.
func (r *UserRepository) Delete(ctx context.Context, id int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var profileID sql.NullInt64
	err = tx.QueryRowContext(ctx, "DELETE FROM users WHERE id = $1 RETURNING profile_id", id).Scan(&profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	if profileID.Valid {
		if _, err := tx.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1", profileID.Int64); err != nil {
			return false, fmt.Errorf("failed to delete profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (r *UserRepository) load(ctx context.Context, users []models.User, inc models.Include) error {
	if len(users) == 0 || len(inc) == 0 {
		return nil
	}
	ids := make([]int, len(users))
	var profileIDs []int
	for i := range users {
		ids[i] = users[i].ID
		if users[i].ProfileID != nil {
			profileIDs = append(profileIDs, *users[i].ProfileID)
		}
	}

	if inc.Has(models.RelProfile) {
		profiles, err := profilesByID(ctx, r.db, profileIDs)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].ProfileID != nil {
				users[i].Profile = profiles[*users[i].ProfileID]
			}
		}
	}
	if inc.Has(models.RelOrders) {
		orders, err := ordersByUser(ctx, r.db, ids)
		if err != nil {
			return err
		}
		for i := range users {
			users[i].Orders = orders[users[i].ID]
		}
	}
	return nil
}
