package service

import (
	"context"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

type UserService struct {
	Repo UserLister
}

type UserView struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (s *UserService) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		v := UserView{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		if u.Role != nil {
			v.Role = u.Role.Name
		}
		out = append(out, v)
	}
	return out, nil
}
