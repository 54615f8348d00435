package page

import "github.com/google/uuid"

// Group identifies a shared content source, typically one open document.
//
// Pages with the same Group and Ident show the same content and share cache
// entries. The tile cache holds groups only weakly: once nothing else
// references a Group, its cached tiles are released.
//
// A Group must be created with NewGroup and must not be copied.
type Group struct {
	id   uuid.UUID
	name string
}

// NewGroup returns a new content group. The name is informational and
// appears in log output.
func NewGroup(name string) *Group {
	return &Group{id: uuid.New(), name: name}
}

// ID returns the unique identity of the group.
func (g *Group) ID() uuid.UUID {
	return g.id
}

// Name returns the name given to NewGroup.
func (g *Group) Name() string {
	return g.name
}

// String returns the name followed by a short form of the identity.
func (g *Group) String() string {
	if g == nil {
		return "<nil>"
	}
	s := g.id.String()
	if g.name == "" {
		return s[:8]
	}
	return g.name + "#" + s[:8]
}
