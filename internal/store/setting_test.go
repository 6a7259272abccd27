package store

import (
	"errors"
	"testing"
)

func TestSettingRepository_GetSet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get(SettingExercise); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	if err := repo.Set(SettingExercise, "CURL"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set(SettingExercise, "SQUAT"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	got, err := repo.Get(SettingExercise)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "SQUAT" {
		t.Errorf("Get() = %q, want SQUAT", got)
	}
}

func TestSettingRepository_Int(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if err := repo.SetInt(SettingTargetReps, 12); err != nil {
		t.Fatalf("SetInt() error = %v", err)
	}
	got, err := repo.GetInt(SettingTargetReps)
	if err != nil {
		t.Fatalf("GetInt() error = %v", err)
	}
	if got != 12 {
		t.Errorf("GetInt() = %d, want 12", got)
	}

	if err := repo.Set(SettingTargetReps, "twelve"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := repo.GetInt(SettingTargetReps); err == nil {
		t.Error("GetInt() should fail for a non-numeric value")
	}
}

func TestSettingRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if err := repo.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
