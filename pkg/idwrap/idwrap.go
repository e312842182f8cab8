// Package idwrap wraps ULIDs used as container and member identifiers so they
// can be stored as 16-byte blobs and compared without exposing the ULID type.
package idwrap

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

var ErrEmptyID = errors.New("id is empty")

type IDWrap struct {
	ulid ulid.ULID
}

func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(s string) (IDWrap, error) {
	u, err := ulid.Parse(s)
	if err != nil {
		return IDWrap{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	return IDWrap{ulid: u}, nil
}

func NewTextMust(s string) IDWrap {
	id, err := NewText(s)
	if err != nil {
		panic(err)
	}
	return id
}

func NewFromBytes(data []byte) (IDWrap, error) {
	var u ulid.ULID
	if err := u.UnmarshalBinary(data); err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: u}, nil
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

func (u IDWrap) Bytes() []byte {
	return u.ulid[:]
}

func (u IDWrap) IsZero() bool {
	return u.ulid == ulid.ULID{}
}

func (u IDWrap) Compare(id IDWrap) int {
	return u.ulid.Compare(id.ulid)
}

// Value stores the id as its 16 raw bytes.
func (u IDWrap) Value() (driver.Value, error) {
	return u.ulid[:], nil
}

func (u *IDWrap) Scan(value any) error {
	data, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("scan id: unsupported type %T", value)
	}
	return u.ulid.UnmarshalBinary(data)
}

// MarshalText lets ids appear as ULID strings in JSON and YAML output.
func (u IDWrap) MarshalText() ([]byte, error) {
	return u.ulid.MarshalText()
}

func (u *IDWrap) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyID
	}
	return u.ulid.UnmarshalText(data)
}
