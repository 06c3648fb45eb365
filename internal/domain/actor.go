package domain

import "time"

// ActorType is the role tag carried by an actor.
type ActorType string

const (
	ActorTypeModel ActorType = "model"
	ActorTypeFan   ActorType = "fan"
	ActorTypeBrand ActorType = "brand"
	ActorTypeAdmin ActorType = "admin"
)

// Valid reports whether t is a known actor type.
func (t ActorType) Valid() bool {
	switch t {
	case ActorTypeModel, ActorTypeFan, ActorTypeBrand, ActorTypeAdmin:
		return true
	}
	return false
}

// Actor is the application-level identity that owns a coin balance.
// AuthUserID is the session identity, ID the actor identity and ProfileID
// the role-specific profile (model profile, brand account, ...).
type Actor struct {
	ID          string
	AuthUserID  string
	Type        ActorType
	ProfileID   string
	DisplayName string
	CreatedAt   time.Time
}

// Is reports whether the actor carries one of the given types.
func (a *Actor) Is(types ...ActorType) bool {
	for _, t := range types {
		if a.Type == t {
			return true
		}
	}
	return false
}
