package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"landlock.dev/landlock/storage"
	"landlock.dev/landlock/storage/casconfig"
	"landlock.dev/landlock/storage/casregistry"
	"landlock.dev/landlock/storage/grpccas"

	_ "landlock.dev/landlock/storage/ipfs"
	_ "landlock.dev/landlock/storage/localfs"
	_ "landlock.dev/landlock/storage/memcas"
)

func main() {
	fs := flag.NewFlagSet("landlock-casd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "CAS backend name")
	configPath := fs.String("cas-config", "", "JSON backend config; opens one or more backends (overrides --backend)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	var cas storage.CAS
	var closeFn func() error
	var err error
	if *configPath != "" {
		var cfg casconfig.Config
		cfg, err = casconfig.LoadFile(*configPath)
		if err == nil {
			cas, closeFn, err = cfg.Open(casregistry.UsageDaemon, "")
		}
	} else {
		cas, closeFn, err = casregistry.Open(*backend, casregistry.UsageDaemon)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpccas.RegisterCASServer(s, &grpccas.Server{CAS: cas})

	if *configPath != "" {
		fmt.Fprintf(os.Stderr, "landlock-casd listening on %s (config=%s)\n", lis.Addr().String(), *configPath)
	} else {
		fmt.Fprintf(os.Stderr, "landlock-casd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	}
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
