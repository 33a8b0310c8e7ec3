package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"landlock.dev/landlock/custody/grpccustody"
	"landlock.dev/landlock/custody/memcustody"
	"landlock.dev/landlock/keys"
)

func main() {
	fs := flag.NewFlagSet("landlock-custodyd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7779", "listen address")
	ttl := fs.Duration("challenge-ttl", memcustody.DefaultChallengeTTL, "auth challenge lifetime")
	attestAlg := fs.String("attest-alg", "ed25519", "challenge attestation key algorithm: ed25519, dilithium3, or none")
	attestSeedHex := fs.String("attest-seed-hex", "", "ed25519 attestation seed as 64 hex chars (default: fresh random key)")

	_ = fs.Parse(os.Args[1:])

	opt := memcustody.Options{ChallengeTTL: *ttl}
	switch *attestAlg {
	case "ed25519":
		var seed []byte
		if *attestSeedHex != "" {
			var err error
			seed, err = keys.ParseSeedHex(*attestSeedHex)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid --attest-seed-hex: %v\n", err)
				os.Exit(2)
			}
		} else {
			seed = make([]byte, ed25519.SeedSize)
			if _, err := rand.Read(seed); err != nil {
				fmt.Fprintf(os.Stderr, "rand: %v\n", err)
				os.Exit(1)
			}
		}
		opt.AttestEd25519 = ed25519.NewKeyFromSeed(seed)
	case "dilithium3":
		if *attestSeedHex != "" {
			fmt.Fprintln(os.Stderr, "--attest-seed-hex only applies to --attest-alg=ed25519")
			os.Exit(2)
		}
		_, priv, err := keys.GenerateDilithium3Keypair(rand.Reader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dilithium3 keygen: %v\n", err)
			os.Exit(1)
		}
		opt.AttestDilithium3 = priv
	case "none":
	default:
		fmt.Fprintln(os.Stderr, "invalid --attest-alg (expected ed25519, dilithium3, or none)")
		os.Exit(2)
	}

	svc, err := memcustody.New(opt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpccustody.RegisterCustodyServer(s, &grpccustody.Server{Custody: svc})

	fmt.Fprintf(os.Stderr, "landlock-custodyd listening on %s (attest=%s, challenge-ttl=%s)\n",
		lis.Addr().String(), *attestAlg, *ttl)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
