package ability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
	"github.com/Skotchmaster/doc_platform/gateway/internal/repo"
)

// Protected resource names, matching Permission.Name rows.
const (
	ResourceDocument  = "Document"
	ResourceUser      = "User"
	ResourceIngestion = "Ingestion"
)

var ErrIdentityNotFound = errors.New("identity not found")

type rule struct {
	action   models.Action
	resource string
}

// Ability is the flattened set of (action, resource) pairs granted to one
// identity. The zero value permits nothing.
type Ability struct {
	rules map[rule]struct{}
}

// New flattens grants into an Ability. Grants whose permission row is
// missing are skipped.
func New(grants []models.RolePermission) Ability {
	a := Ability{rules: make(map[rule]struct{}, len(grants))}
	for _, g := range grants {
		if g.Permission == nil {
			continue
		}
		a.rules[rule{action: g.AccessType, resource: g.Permission.Name}] = struct{}{}
	}
	return a
}

func (a Ability) Can(action models.Action, resource string) bool {
	_, ok := a.rules[rule{action: action, resource: resource}]
	return ok
}

// Rules lists the granted pairs as "ACTION:Resource", sorted.
func (a Ability) Rules() []string {
	out := make([]string, 0, len(a.rules))
	for r := range a.rules {
		out = append(out, string(r.action)+":"+r.resource)
	}
	sort.Strings(out)
	return out
}

type GrantLoader interface {
	LoadUserWithGrants(ctx context.Context, id uint) (*models.User, error)
}

// Builder computes abilities from the current role grants. Nothing is
// cached, so grant changes apply to the next request.
type Builder struct {
	Store GrantLoader
}

// Build re-reads the identity with its role grants in one deep read.
func (b *Builder) Build(ctx context.Context, user *models.User) (Ability, error) {
	if user == nil {
		return Ability{}, ErrIdentityNotFound
	}
	current, err := b.Store.LoadUserWithGrants(ctx, user.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return Ability{}, ErrIdentityNotFound
	}
	if err != nil {
		return Ability{}, fmt.Errorf("load identity grants: %w", err)
	}
	if current.Role == nil {
		return New(nil), nil
	}
	return New(current.Role.Grants), nil
}
