package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys used by the application.
const (
	SettingExercise   = "session.exercise"
	SettingTargetReps = "session.target_reps"
)

// SettingRepository stores key-value application settings.
type SettingRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingRepository {
	return &SettingRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// GetInt returns the value stored under key parsed as an integer.
func (r *SettingRepository) GetInt(key string) (int, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// SetInt stores an integer value under key.
func (r *SettingRepository) SetInt(key string, value int) error {
	return r.Set(key, strconv.Itoa(value))
}

// Delete removes key.
func (r *SettingRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return affectedOne(result)
}
