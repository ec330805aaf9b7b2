package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/md-rashed-zaman/tutorslots/libs/db"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
)

type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]availability.User
}

func NewMemoryUsers(users ...availability.User) *MemoryUsers {
	m := &MemoryUsers{users: map[string]availability.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MemoryUsers) GetUser(_ context.Context, id string) (availability.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return availability.User{}, fmt.Errorf("%w: %s", availability.ErrUserNotFound, id)
	}
	return u, nil
}

func (m *MemoryUsers) PutUser(_ context.Context, u availability.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return errMissingUserID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// PostgresUsers is the users table, kept current by profile events.
type PostgresUsers struct {
	pool *db.Pool
}

func NewPostgresUsers(pool *db.Pool) *PostgresUsers {
	return &PostgresUsers{pool: pool}
}

func (r *PostgresUsers) GetUser(ctx context.Context, id string) (availability.User, error) {
	var (
		u     availability.User
		role  string
		avail []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, country_iso_num, role, availability
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.CountryISONum, &role, &avail)
	if IsNotFound(err) {
		return availability.User{}, fmt.Errorf("%w: %s", availability.ErrUserNotFound, id)
	}
	if err != nil {
		return availability.User{}, err
	}
	u.Role = availability.Role(role)
	if len(avail) > 0 {
		if err := json.Unmarshal(avail, &u.Availability); err != nil {
			return availability.User{}, fmt.Errorf("decode availability for %s: %w", id, err)
		}
	}
	return u, nil
}

func (r *PostgresUsers) PutUser(ctx context.Context, u availability.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return errMissingUserID
	}
	avail := u.Availability
	if avail == nil {
		avail = availability.DailyAvailability{}
	}
	raw, err := json.Marshal(avail)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (id, name, country_iso_num, role, availability, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			country_iso_num = EXCLUDED.country_iso_num,
			role = EXCLUDED.role,
			availability = EXCLUDED.availability,
			updated_at = now()
	`, u.ID, u.Name, u.CountryISONum, string(u.Role), raw)
	return err
}

var _ availability.UserDirectory = (*PostgresUsers)(nil)
var _ availability.UserDirectory = (*MemoryUsers)(nil)
