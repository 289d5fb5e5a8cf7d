package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/storelane/catalog-api/internal/model"
	"github.com/storelane/catalog-api/internal/utils"
)

// UserRepo encapsulates all database queries against the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,first_name,last_name,phone,address,is_active,is_staff,created_at,updated_at"

// NewUser carries the validated registration input. Phone and Address are
// optional; empty strings are stored as NULL.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// Create inserts a user and returns its ID. The email is normalized to
// lowercase before the insert so uniqueness is case-insensitive regardless
// of collation. Duplicate-key violations (MySQL error 1062) are mapped to
// ErrEmailExists or ErrUsernameExists depending on the violated index.
func (r *UserRepo) Create(ctx context.Context, nu NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	hash, err := utils.HashPassword(nu.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, first_name, last_name, phone, address) VALUES (?,?,?,?,?,?,?)",
		nu.Username, email, hash, nu.FirstName, nu.LastName, nullable(nu.Phone), nullable(nu.Address))
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1",
		username).Scan(userFields(&u)...)
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))).Scan(userFields(&u)...)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(userFields(&u)...)
	return u, err
}

// EmailTakenByOther reports whether some user other than excludeID already
// holds the given email. Used by profile updates to re-check uniqueness
// excluding the user's own row.
func (r *UserRepo) EmailTakenByOther(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? AND id<>?",
		strings.ToLower(strings.TrimSpace(email)), excludeID).Scan(&n)
	return n > 0, err
}

// ProfileUpdate lists the mutable profile fields. Nil pointers mean "leave
// unchanged"; the identifier, username, flags and timestamps are never
// client-writable.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
}

// UpdateProfile merges only the supplied fields into the user row. The email,
// when present, is stored lowercase; a duplicate-key race on the unique email
// index surfaces as ErrEmailExists.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd ProfileUpdate) error {
	set := []string{}
	args := []any{}
	if upd.FirstName != nil {
		set = append(set, "first_name=?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		set = append(set, "last_name=?")
		args = append(args, *upd.LastName)
	}
	if upd.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.Phone != nil {
		set = append(set, "phone=?")
		args = append(args, nullable(*upd.Phone))
	}
	if upd.Address != nil {
		set = append(set, "address=?")
		args = append(args, nullable(*upd.Address))
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at=CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil && isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword replaces the stored credential hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		hash, id)
	return err
}

// userFields returns scan destinations in userColumns order.
func userFields(u *model.User) []any {
	return []any{&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.Address, &u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt}
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// isDuplicate detects MySQL duplicate-entry errors (code 1062) without
// depending on the driver's error type.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
