package mcontainer

import (
	"fmt"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// Kind names which ordered collection a container is.
type Kind int8

const (
	KindUnspecified Kind = iota
	KindEntityAttributes
	KindGroupEntries
)

func (k Kind) String() string {
	switch k {
	case KindEntityAttributes:
		return "entity-attributes"
	case KindGroupEntries:
		return "group-entries"
	default:
		return "unspecified"
	}
}

// ParseKind accepts the String form of a kind, plus the short aliases the CLI
// uses.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "entity-attributes", "entity", "attributes":
		return KindEntityAttributes, nil
	case "group-entries", "group", "entries":
		return KindGroupEntries, nil
	default:
		return KindUnspecified, fmt.Errorf("unknown container kind %q", s)
	}
}

// AttributeForm tags the kind of attribute a member of an entity's attribute
// list is. Attribute ids are only unique within a form.
type AttributeForm int32

const (
	FormNone AttributeForm = iota
	FormQuantity
	FormDate
	FormBoolean
	FormFile
	FormText
	FormRelationToLocalEntity
	FormRelationToGroup
	FormRelationToRemoteEntity
)

var formNames = map[AttributeForm]string{
	FormQuantity:               "quantity",
	FormDate:                   "date",
	FormBoolean:                "boolean",
	FormFile:                   "file",
	FormText:                   "text",
	FormRelationToLocalEntity:  "relation-to-entity",
	FormRelationToGroup:        "relation-to-group",
	FormRelationToRemoteEntity: "relation-to-remote-entity",
}

func (f AttributeForm) Valid() bool {
	return f >= FormQuantity && f <= FormRelationToRemoteEntity
}

func (f AttributeForm) String() string {
	if name, ok := formNames[f]; ok {
		return name
	}
	return "none"
}

func ParseForm(s string) (AttributeForm, error) {
	for f, name := range formNames {
		if name == s {
			return f, nil
		}
	}
	return FormNone, fmt.Errorf("unknown attribute form %q", s)
}

// Ref identifies one container: an entity (its attributes) or a group (its
// entries).
type Ref struct {
	Kind Kind
	ID   idwrap.IDWrap
}

func (r Ref) String() string {
	return r.Kind.String() + "/" + r.ID.String()
}

// Member identifies a member within a container. Form is zero for group
// entries.
type Member struct {
	ID   idwrap.IDWrap
	Form AttributeForm
}

func (m Member) Equal(o Member) bool {
	return m.Form == o.Form && m.ID.Compare(o.ID) == 0
}

func (m Member) String() string {
	if m.Form == FormNone {
		return m.ID.String()
	}
	return m.Form.String() + ":" + m.ID.String()
}

// Entry is a member together with its current sort key.
type Entry struct {
	Key      sortkey.Key
	Member   Member
	Archived bool
}

// Compare orders members by form, then id. It breaks ties between entries
// that share a key.
func (m Member) Compare(o Member) int {
	switch {
	case m.Form < o.Form:
		return -1
	case m.Form > o.Form:
		return 1
	}
	return m.ID.Compare(o.ID)
}
