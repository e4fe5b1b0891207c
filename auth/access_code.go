package auth

import "fmt"

// AccessCode is the backend's cdTpAcesso classification of a user.
type AccessCode int

const (
	accessUndefined AccessCode = iota
	AccessAdmin                // 1 Administrador
	AccessRestricted           // 2 Profissional, read-only and access limited
	AccessAthlete              // 3 Atleta
	AccessVisitor              // 4 Visitante
	AccessGuest                // 5 Convidado
	AccessStandard             // 6 Padrão, read-only
	accessCodeCount
)

// Capabilities are the derived permissions of one access code.
type Capabilities struct {
	CreateTraining bool
	Admin          bool
	ReadOnly       bool
	Restricted     bool
}

// Codes 2 and 6 are both read-only but only 2 is restricted.
var capabilityTable = [...]Capabilities{
	accessUndefined:  {},
	AccessAdmin:      {CreateTraining: true, Admin: true},
	AccessRestricted: {ReadOnly: true, Restricted: true},
	AccessAthlete:    {CreateTraining: true},
	AccessVisitor:    {CreateTraining: true},
	AccessGuest:      {CreateTraining: true},
	AccessStandard:   {ReadOnly: true},
}

// Fails to compile when a code is added without a capability table entry.
var _ = [1]struct{}{}[len(capabilityTable)-int(accessCodeCount)]

var accessLabels = [...]string{
	accessUndefined:  "Indefinido",
	AccessAdmin:      "Administrador",
	AccessRestricted: "Profissional",
	AccessAthlete:    "Atleta",
	AccessVisitor:    "Visitante",
	AccessGuest:      "Convidado",
	AccessStandard:   "Padrão",
}

var _ = [1]struct{}{}[len(accessLabels)-int(accessCodeCount)]

// ParseAccessCode converts a raw cdTpAcesso value into a known code.
func ParseAccessCode(code int) (AccessCode, error) {
	if code <= int(accessUndefined) || code >= int(accessCodeCount) {
		return accessUndefined, fmt.Errorf("%w: %d", ErrUnknownAccessCode, code)
	}
	return AccessCode(code), nil
}

// AccessCodes lists every known code in ascending order.
func AccessCodes() []AccessCode {
	codes := make([]AccessCode, 0, accessCodeCount-1)
	for c := AccessAdmin; c < accessCodeCount; c++ {
		codes = append(codes, c)
	}
	return codes
}

func (c AccessCode) Valid() bool {
	return c > accessUndefined && c < accessCodeCount
}

func (c AccessCode) Capabilities() Capabilities {
	if !c.Valid() {
		return Capabilities{}
	}
	return capabilityTable[c]
}

func (c AccessCode) String() string {
	if !c.Valid() {
		return accessLabels[accessUndefined]
	}
	return accessLabels[c]
}
