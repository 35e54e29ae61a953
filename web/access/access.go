// Package access decides whether a request may reach the administrative views.
//
// The gate is a pure function of the view being opened and the identity
// resolved for the current request. It keeps no state between requests.
package access

import (
	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database/model"
)

// View identifies the kind of administrative view being opened.
type View int

const (
	// IndexView is the admin landing page.
	IndexView View = iota
	// ModelView is any per-entity list/create/edit/delete view, and the panel
	// settings, status and logs.
	ModelView
)

func (v View) String() string {
	switch v {
	case IndexView:
		return "index"
	case ModelView:
		return "model"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a gate evaluation.
type Decision int

const (
	// Denied keeps the request out of the view.
	Denied Decision = iota
	// Allowed lets the request reach the view.
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// Identity is the capability record of the current requester.
type Identity struct {
	UserId        int
	Name          string
	Authenticated bool
	Active        bool
	Roles         []int
}

// Anonymous is the identity of a request without a valid session.
func Anonymous() Identity {
	return Identity{}
}

// IdentityOf builds the identity of a user whose session was verified.
func IdentityOf(user *model.User) Identity {
	if user == nil {
		return Anonymous()
	}
	roles := make([]int, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Id)
	}
	return Identity{
		UserId:        user.Id,
		Name:          user.DisplayName(),
		Authenticated: true,
		Active:        user.Active,
		Roles:         roles,
	}
}

// Gate evaluates access for one auth mode.
type Gate struct {
	mode config.AuthMode
}

// NewGate returns the gate of mode.
func NewGate(mode config.AuthMode) Gate {
	return Gate{mode: mode}
}

// Mode returns the auth mode the gate evaluates for.
func (g Gate) Mode() config.AuthMode {
	return g.mode
}

// Evaluate returns Allowed when identity may open view.
//
// Session mode: the index needs an authenticated identity, model views need
// an authenticated and active one. Register mode: every view needs an
// authenticated identity; the active flag is not checked here.
func (g Gate) Evaluate(view View, identity Identity) Decision {
	if !identity.Authenticated {
		return Denied
	}
	if g.mode == config.AuthModeSession && view == ModelView && !identity.Active {
		return Denied
	}
	return Allowed
}

// Accessible is Evaluate as a boolean.
func (g Gate) Accessible(view View, identity Identity) bool {
	return g.Evaluate(view, identity) == Allowed
}
