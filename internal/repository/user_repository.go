package repository

import (
	"context"

	"storefront/internal/entity"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// CreateUser returns ErrDuplicate when the username is already taken.
func (r *UserRepository) CreateUser(ctx context.Context, q DBTX, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (username, full_name, email, password_hash) VALUES (?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, user.Username, user.FullName, user.Email, user.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, q DBTX, username string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, username, full_name, email, password_hash FROM users WHERE username = ?`
	err := q.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.FullName, &user.Email, &user.PasswordHash)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) CreateProfile(ctx context.Context, q DBTX, profile *entity.UserProfile) (*entity.UserProfile, error) {
	query := `INSERT INTO user_profiles (user_id, phone, address) VALUES (?, ?, ?)`
	res, err := q.ExecContext(ctx, query, profile.UserID, profile.Phone, profile.Address)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	profile.ID = int(id)
	return profile, nil
}

func (r *UserRepository) GetProfileByUserID(ctx context.Context, q DBTX, userID int) (*entity.UserProfile, error) {
	profile := &entity.UserProfile{}
	query := `SELECT id, user_id, phone, address FROM user_profiles WHERE user_id = ?`
	err := q.QueryRowContext(ctx, query, userID).Scan(&profile.ID, &profile.UserID, &profile.Phone, &profile.Address)
	if err != nil {
		return nil, err
	}

	return profile, nil
}
