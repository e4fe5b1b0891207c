package auth

// Permissions answers capability questions for the current principal. The
// zero value denies everything.
type Permissions struct {
	code          AccessCode
	defined       bool
	authenticated bool
}

// NewPermissions derives permissions from the session's user. A nil user, an
// anonymous session or an unknown access code all yield no capabilities.
func NewPermissions(user *User, authenticated bool) Permissions {
	if !authenticated || user == nil {
		return Permissions{}
	}
	code, ok := user.AccessCode()
	return Permissions{code: code, defined: ok, authenticated: true}
}

func (p Permissions) caps() Capabilities {
	if !p.authenticated || !p.defined {
		return Capabilities{}
	}
	return p.code.Capabilities()
}

// CanCreateTraining is false for the read-only profiles 2 and 6.
func (p Permissions) CanCreateTraining() bool { return p.caps().CreateTraining }

func (p Permissions) IsAdmin() bool { return p.caps().Admin }

func (p Permissions) IsReadOnly() bool { return p.caps().ReadOnly }

func (p Permissions) HasRestrictedAccess() bool { return p.caps().Restricted }

// HasAccess reports whether the user's code is exactly code.
func (p Permissions) HasAccess(code AccessCode) bool {
	return p.authenticated && p.defined && p.code == code
}

func (p Permissions) IsAuthenticated() bool { return p.authenticated }

func (p Permissions) AccessCode() (AccessCode, bool) {
	if !p.authenticated || !p.defined {
		return accessUndefined, false
	}
	return p.code, true
}
