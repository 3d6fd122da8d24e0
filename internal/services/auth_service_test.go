package services

import (
	"testing"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"
	"hackathon-management-backend/internal/utils"

	"github.com/google/uuid"
)

func TestChangePasswordRotatesHash(t *testing.T) {
	hashed, err := utils.HashPassword("old-secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{ID: uuid.New(), Email: "staff@hackathon.local", Password: hashed, Role: "staff"}
	users := newStubUserRepo(user)
	svc := NewAuthService(&repositories.Repository{UserRepo: users}, &config.Config{JWTSecret: "secret"})

	if err := svc.ChangePassword(user.ID.String(), "wrong-guess", "new-secret"); err == nil {
		t.Fatal("expected rejection of a wrong current password")
	}
	if err := utils.CheckPassword("old-secret", users.users[user.ID.String()].Password); err != nil {
		t.Fatal("failed attempt must not change the stored hash")
	}

	if err := svc.ChangePassword(user.ID.String(), "old-secret", "new-secret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	stored := users.users[user.ID.String()].Password
	if err := utils.CheckPassword("new-secret", stored); err != nil {
		t.Error("new password does not verify against the stored hash")
	}
	if utils.CheckPassword("old-secret", stored) == nil {
		t.Error("old password still verifies")
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := NewAuthService(&repositories.Repository{UserRepo: newStubUserRepo()}, &config.Config{JWTSecret: "secret"})
	if err := svc.ChangePassword(uuid.NewString(), "whatever", "new-secret"); err == nil {
		t.Fatal("expected an error for an unknown user id")
	}
}
