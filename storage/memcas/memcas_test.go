package memcas

import (
	"testing"

	"landlock.dev/landlock/storage"
	"landlock.dev/landlock/storage/testkit"
)

func TestConformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return New()
	})
}
