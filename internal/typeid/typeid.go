// Package typeid mints the prefixed IDs handed out to websocket clients,
// controllers and export jobs.
package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Kind is the prefix of an ID.
type Kind string

const (
	Client     Kind = "client"
	Controller Kind = "ctl"
	Export     Kind = "exp"
)

func (k Kind) New() string {
	return typeid.MustGenerate(string(k)).String()
}

// Check reports an error unless id parses and carries this kind's prefix.
func (k Kind) Check(id string) error {
	got, err := KindOf(id)
	if err != nil {
		return err
	}
	if got != k {
		return fmt.Errorf("id %q is a %s id, want %s", id, got, k)
	}
	return nil
}

func KindOf(id string) (Kind, error) {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", id, err)
	}
	return Kind(parsed.Prefix()), nil
}
