package memcas

import (
	"flag"

	"landlock.dev/landlock/storage"
	"landlock.dev/landlock/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:          "mem",
		Description:   "In-memory CAS (volatile, single process)",
		Usage:         casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return New(), nil, nil
		},
	})
}
