package authz

import (
	"context"
	"errors"

	"github.com/Skotchmaster/doc_platform/gateway/internal/ability"
	"github.com/Skotchmaster/doc_platform/gateway/internal/authn"
	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

var ErrUnauthenticated = errors.New("no authenticated identity")

// Requirement is one predicate over an Ability.
type Requirement func(ability.Ability) bool

func Can(action models.Action, resource string) Requirement {
	return func(a ability.Ability) bool { return a.Can(action, resource) }
}

// Evaluate reports whether every requirement holds. No requirements means allowed.
func Evaluate(a ability.Ability, reqs ...Requirement) bool {
	for _, req := range reqs {
		if !req(a) {
			return false
		}
	}
	return true
}

type AbilityBuilder interface {
	Build(ctx context.Context, user *models.User) (ability.Ability, error)
}

type Gate struct {
	Abilities AbilityBuilder
}

// Authorize builds a fresh ability for user and evaluates reqs against it.
// A denial is (false, nil); errors come only from building the ability.
func (g *Gate) Authorize(ctx context.Context, user *models.User, reqs []Requirement) (bool, error) {
	if user == nil {
		return false, ErrUnauthenticated
	}
	a, err := g.Abilities.Build(ctx, user)
	if err != nil {
		return false, err
	}
	return Evaluate(a, reqs...), nil
}

// AuthorizeRequest authorizes the identity attached to ctx by authentication.
func (g *Gate) AuthorizeRequest(ctx context.Context, reqs []Requirement) (bool, error) {
	user, ok := authn.IdentityFromContext(ctx)
	if !ok {
		return false, ErrUnauthenticated
	}
	return g.Authorize(ctx, user, reqs)
}
