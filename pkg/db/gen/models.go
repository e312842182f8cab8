package gen

import (
	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

type Entity struct {
	ID       idwrap.IDWrap
	Name     string
	Archived bool
}

type Group struct {
	ID   idwrap.IDWrap
	Name string
}

type AttributeSorting struct {
	EntityID        idwrap.IDWrap
	AttributeFormID int32
	AttributeID     idwrap.IDWrap
	Label           string
	Archived        bool
	SortingIndex    sortkey.Key
}

type GroupEntry struct {
	GroupID      idwrap.IDWrap
	EntityID     idwrap.IDWrap
	SortingIndex sortkey.Key
	// Archived is the archived flag of the entity the entry points at.
	Archived bool
	Name     string
}
