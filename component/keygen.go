package component

import (
	"fmt"
	"strings"
)

// keySeparator joins a generated key's parts. 0x1f (ASCII "unit
// separator") cannot appear in a legal Go identifier, so a class or
// method name can never collide with it.
const keySeparator = "\x1f"

// KeyGenerator derives a cache/lock key from a policy's owning class,
// method, and call arguments. The default joins its arguments with
// keySeparator; replace it for domains where arguments are not
// trivially stringifiable (e.g. structs without a useful %v).
type KeyGenerator func(class, method string, args ...any) string

// DefaultKeyGenerator joins class, method, and the %v-formatted
// arguments with keySeparator.
func DefaultKeyGenerator(class, method string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	parts = append(parts, class, method)
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	return strings.Join(parts, keySeparator)
}
