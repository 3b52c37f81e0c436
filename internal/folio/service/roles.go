package service

import (
	"strings"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
)

// AdminRoleResolver decides the role of a newly created account.
type AdminRoleResolver interface {
	RoleForEmail(email string) domain.Role
}

// StaticAdminList grants the admin role to a fixed set of emails.
type StaticAdminList struct {
	emails map[string]struct{}
}

// NewStaticAdminList normalises emails. Entries may themselves be comma
// separated, which is how ADMIN_EMAILS arrives from the environment.
func NewStaticAdminList(emails ...string) *StaticAdminList {
	l := &StaticAdminList{emails: map[string]struct{}{}}
	for _, entry := range emails {
		for _, e := range strings.Split(entry, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				l.emails[e] = struct{}{}
			}
		}
	}
	return l
}

func (l *StaticAdminList) RoleForEmail(email string) domain.Role {
	if l == nil {
		return domain.RoleUser
	}
	if _, ok := l.emails[strings.ToLower(strings.TrimSpace(email))]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}
