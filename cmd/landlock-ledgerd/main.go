package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"landlock.dev/landlock/ledger/grpcledger"
	"landlock.dev/landlock/ledger/memledger"
	"landlock.dev/landlock/model"
)

func main() {
	fs := flag.NewFlagSet("landlock-ledgerd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7778", "listen address")
	issuerStr := fs.String("issuer", "", "issuing authority address (0x..); empty allows anyone to mint")

	_ = fs.Parse(os.Args[1:])

	var issuer model.Address
	if *issuerStr != "" {
		var err error
		issuer, err = model.ParseAddress(*issuerStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --issuer: %v\n", err)
			os.Exit(2)
		}
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcledger.RegisterLedgerServer(s, &grpcledger.Server{Ledger: memledger.New(issuer)})

	if issuer.IsZero() {
		fmt.Fprintf(os.Stderr, "landlock-ledgerd listening on %s (open minting)\n", lis.Addr().String())
	} else {
		fmt.Fprintf(os.Stderr, "landlock-ledgerd listening on %s (issuer=%s)\n", lis.Addr().String(), issuer)
	}
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
