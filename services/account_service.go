package services

import (
	"chat-sim/domain/chat"
	"chat-sim/errors"
	"chat-sim/notify"
	"chat-sim/repositories"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ProfileRequest struct {
	Name   string `validate:"required,max=64"`
	Email  string `validate:"required,email"`
	Avatar string `validate:"omitempty,url"`
}

// Publisher surfaces notices to the user.
type Publisher interface {
	Publish(message string, kind notify.Kind) string
}

type IAccountService interface {
	UpdateProfile(req ProfileRequest) (chat.User, error)
	SetPresence(presence chat.Presence) error
}

// AccountService edits the profile of the acting account.
// Every failure is also published as an error notice, every success as a success notice.
type AccountService struct {
	repository repositories.IAccountRepository
	notices    Publisher
	log        *slog.Logger
}

func NewAccountService(repository repositories.IAccountRepository, notices Publisher, log *slog.Logger) *AccountService {
	return &AccountService{repository: repository, notices: notices, log: log}
}

func (s *AccountService) UpdateProfile(req ProfileRequest) (chat.User, error) {
	if err := validate.Struct(req); err != nil {
		s.notices.Publish("Failed to update profile", notify.Error)
		return chat.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidProfile, err)
	}

	user := s.repository.CurrentUser()
	user.Name = req.Name
	user.Email = req.Email
	user.Avatar = req.Avatar
	if err := s.repository.SaveUser(user); err != nil {
		s.notices.Publish("Failed to update profile", notify.Error)
		return chat.User{}, err
	}

	s.log.Info("Profile updated", "user", user.ID)
	s.notices.Publish("Profile updated successfully", notify.Success)
	return user, nil
}

func (s *AccountService) SetPresence(presence chat.Presence) error {
	if !presence.Valid() {
		s.notices.Publish(fmt.Sprintf("Unknown status %q", presence), notify.Error)
		return fmt.Errorf("%w: %q", errors.ErrInvalidPresence, presence)
	}

	user := s.repository.CurrentUser()
	user.Presence = presence
	if err := s.repository.SaveUser(user); err != nil {
		s.notices.Publish("Failed to update status", notify.Error)
		return err
	}

	s.log.Info("Presence updated", "user", user.ID, "presence", presence)
	s.notices.Publish(fmt.Sprintf("You are now %s", presence), notify.Info)
	return nil
}
