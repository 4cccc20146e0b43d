package loader

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ExtendSeparator joins a base name and the unique token of an extension.
const ExtendSeparator = "__extend__"

// KeyGen derives storage keys for "extend" declarations.  Every key returned
// during one resolution must differ from every other key returned in it.
type KeyGen interface {
	NextKey(base string) string
}

// UUIDKeyGen suffixes a random UUID.
type UUIDKeyGen struct{}

func (UUIDKeyGen) NextKey(base string) string {
	return base + ExtendSeparator + uuid.NewString()
}

// CounterKeyGen suffixes a counter, giving reproducible keys across runs.
type CounterKeyGen struct {
	counter int
}

func (c *CounterKeyGen) NextKey(base string) string {
	c.counter += 1
	return fmt.Sprintf("%s%s%d", base, ExtendSeparator, c.counter)
}

// NewKeyGen returns the generator named by kind ("uuid" or "counter").
func NewKeyGen(kind string) (KeyGen, error) {
	switch strings.ToLower(kind) {
	case "", "uuid":
		return UUIDKeyGen{}, nil
	case "counter":
		return &CounterKeyGen{}, nil
	}
	return nil, fmt.Errorf("unknown key generator: %s", kind)
}

// IsExtensionKey returns true if key has the shape of a derived extension key.
// Plain names may have that shape too; DefTag.Extension is authoritative.
func IsExtensionKey(key string) bool {
	return strings.Contains(key, ExtendSeparator)
}

// BaseName strips the extension suffix, if any, returning the name of the
// definition the extension applies to.  Generated tokens never contain the
// separator, so the last one splits base from token.
func BaseName(key string) string {
	if i := strings.LastIndex(key, ExtendSeparator); i >= 0 {
		return key[:i]
	}
	return key
}
