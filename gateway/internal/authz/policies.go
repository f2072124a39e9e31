package authz

import (
	"github.com/Skotchmaster/doc_platform/gateway/internal/ability"
	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

// Operation ids of the gateway endpoints.
const (
	OpUserRegister    = "user.register"
	OpUserLogin       = "user.login"
	OpUserLogout      = "user.logout"
	OpUserList        = "user.list"
	OpDocumentCreate  = "document.create"
	OpDocumentList    = "document.list"
	OpDocumentSearch  = "document.search"
	OpDocumentGet     = "document.get"
	OpDocumentUpdate  = "document.update"
	OpDocumentDelete  = "document.delete"
	OpIngestionCreate = "ingestion.create"
	OpIngestionGet    = "ingestion.get"
)

// Policies maps an operation id to the requirements it declares.
type Policies map[string][]Requirement

// For returns the requirements of op and whether op is declared at all.
func (p Policies) For(op string) ([]Requirement, bool) {
	reqs, ok := p[op]
	return reqs, ok
}

func DefaultPolicies() Policies {
	return Policies{
		OpUserLogout:      nil,
		OpUserList:        {Can(models.ActionRead, ability.ResourceUser)},
		OpDocumentCreate:  {Can(models.ActionWrite, ability.ResourceDocument)},
		OpDocumentList:    {Can(models.ActionRead, ability.ResourceDocument)},
		OpDocumentSearch:  {Can(models.ActionRead, ability.ResourceDocument)},
		OpDocumentGet:     {Can(models.ActionRead, ability.ResourceDocument)},
		OpDocumentUpdate:  {Can(models.ActionUpdate, ability.ResourceDocument)},
		OpDocumentDelete:  {Can(models.ActionDelete, ability.ResourceDocument)},
		OpIngestionCreate: {Can(models.ActionWrite, ability.ResourceIngestion)},
		OpIngestionGet:    {Can(models.ActionRead, ability.ResourceIngestion)},
	}
}
