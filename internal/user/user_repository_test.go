package user

import (
	"errors"
	"testing"

	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
	"github.com/cloudnativeg23/stadium-matching/internal/testutil"
)

func TestCreateAndLookup(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Name: "Alice", Email: "alice@example.com", Password: "hash", IsActive: true}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("email = %q, want %q", byID.Email, user.Email)
	}

	byEmail, err := repo.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("id = %d, want %d", byEmail.ID, user.ID)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)

	if err := repo.Create(&models.User{Name: "A", Email: "dup@example.com", Password: "x", IsActive: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(&models.User{Name: "B", Email: "dup@example.com", Password: "x", IsActive: true})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("dup Create err = %v, want ErrConflict", err)
	}
}

func TestLookupMissingUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)

	if _, err := repo.GetByID(999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetByID err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByEmail("ghost@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetByEmail err = %v, want ErrNotFound", err)
	}
}
