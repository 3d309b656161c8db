package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tamaqBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users (name, phone, email, password, city, role, verified, created_at) VALUES (?,?,?,?,?,?,?,?)`,
		user.Name, user.Phone, user.Email, user.Password, user.City, user.Role, user.Verified, time.Now())
	if err != nil {
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = id
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, phone, email, password, city, role, verified, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Password, &u.City, &u.Role, &u.Verified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, phone, email, password, city, role, verified, created_at FROM users WHERE phone = ?`, phone).
		Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Password, &u.City, &u.Role, &u.Verified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, phone, email, password, city, role, verified, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Password, &u.City, &u.Role, &u.Verified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) SaveSession(ctx context.Context, session models.Session) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions (user_id, role, refresh_token, expires_at) VALUES (?,?,?,?) ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)`,
		session.UserID, session.Role, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx, `SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`, refreshToken).
		Scan(&s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (r *UserRepository) SaveVerificationCode(ctx context.Context, phone, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO verification_codes (phone, code, expires_at) VALUES (?,?,?) ON DUPLICATE KEY UPDATE code = VALUES(code), expires_at = VALUES(expires_at)`,
		phone, code, expiresAt)
	return err
}

func (r *UserRepository) GetVerificationCode(ctx context.Context, phone string) (string, time.Time, error) {
	var code string
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx, `SELECT code, expires_at FROM verification_codes WHERE phone = ?`, phone).Scan(&code, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, models.ErrNoRecord
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return code, expiresAt, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, phone string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET verified = 1 WHERE phone = ?`, phone)
	return err
}

func (r *UserRepository) SaveDeviceToken(ctx context.Context, userID int64, token string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET device_token = ? WHERE id = ?`, token, userID)
	return err
}

func (r *UserRepository) GetDeviceToken(ctx context.Context, userID int64) (string, error) {
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT device_token FROM users WHERE id = ?`, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return token.String, nil
}
