// Package access decides whether a session may open a screen or perform an
// operation. The same evaluator gates client navigation, client mutations and
// server routes.
package access

import "github.com/noah-isme/qc-checklist/internal/models"

// RoleSet is a set of roles allowed to perform an action. An empty set allows
// any authenticated role.
type RoleSet []models.UserRole

// Named role sets.
var (
	AllRoles        = RoleSet{}
	AssistanceRoles = RoleSet{models.RoleAssistencia, models.RoleAdmin}
	AdminOnly       = RoleSet{models.RoleAdmin}
)

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role models.UserRole) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// CanAccess is false without a session, true for any session when required
// is empty and otherwise true only when the session role is in required.
func CanAccess(session *models.Session, required RoleSet) bool {
	if session == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	return required.Contains(session.Role)
}

// Screen names a navigable area of the application.
type Screen string

const (
	ScreenHome              Screen = "home"
	ScreenChecklist         Screen = "checklist"
	ScreenHistorico         Screen = "historico"
	ScreenAssistencia       Screen = "assistencia"
	ScreenAnalise           Screen = "analise"
	ScreenGerenciarProducao Screen = "gerenciar-producao"
	ScreenGerenciarUsuarios Screen = "gerenciar-usuarios"
)

var screenRoles = map[Screen]RoleSet{
	ScreenHome:              AllRoles,
	ScreenChecklist:         AllRoles,
	ScreenHistorico:         AllRoles,
	ScreenAssistencia:       AssistanceRoles,
	ScreenAnalise:           AssistanceRoles,
	ScreenGerenciarProducao: AdminOnly,
	ScreenGerenciarUsuarios: AdminOnly,
}

// Screens lists every known screen in menu order.
func Screens() []Screen {
	return []Screen{
		ScreenHome,
		ScreenChecklist,
		ScreenHistorico,
		ScreenAssistencia,
		ScreenAnalise,
		ScreenGerenciarProducao,
		ScreenGerenciarUsuarios,
	}
}

// RolesFor returns the roles allowed on a screen and whether the screen exists.
func RolesFor(screen Screen) (RoleSet, bool) {
	roles, ok := screenRoles[screen]
	return roles, ok
}

// CanOpen applies the navigation guard. Unknown screens are never allowed.
func CanOpen(session *models.Session, screen Screen) bool {
	roles, ok := RolesFor(screen)
	if !ok {
		return false
	}
	return CanAccess(session, roles)
}
