package formatter

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

// StaticRule always yields v.
func StaticRule(v any) AttributeRule {
	return NoArgRule(func() (any, error) { return v, nil })
}

// UUIDRule yields a fresh random UUID string for every record.
func UUIDRule() AttributeRule {
	return NoArgRule(func() (any, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	})
}

var hostname = sync.OnceValues(os.Hostname)

// HostnameRule yields the host name of the machine.
func HostnameRule() AttributeRule {
	return NoArgRule(func() (any, error) { return hostname() })
}
