package ipfs

import (
	"flag"
	"os"

	"landlock.dev/landlock/storage"
	"landlock.dev/landlock/storage/casregistry"
)

var (
	flagBin  string
	flagPath string
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "ipfs",
		Description: "Kubo-CLI IPFS CAS (raw blocks in the local IPFS repo)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagBin, "ipfs-bin", "", "Path to the ipfs binary (for --backend=ipfs; default \"ipfs\")")
			fs.StringVar(&flagPath, "ipfs-path", "", "IPFS repo path (for --backend=ipfs; sets IPFS_PATH)")
		},
		Open: func() (storage.CAS, func() error, error) {
			opts := Options{Bin: flagBin}
			if flagPath != "" {
				opts.Env = append(os.Environ(), "IPFS_PATH="+flagPath)
			}
			return New(opts), nil, nil
		},
	})
}
