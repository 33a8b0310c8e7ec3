package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"landlock.dev/landlock/auth"
	"landlock.dev/landlock/coordinator"
	"landlock.dev/landlock/custody/grpccustody"
	"landlock.dev/landlock/keys"
	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/ledger/grpcledger"
	"landlock.dev/landlock/model"
	"landlock.dev/landlock/storage/casregistry"
	"landlock.dev/landlock/vault"
	"landlock.dev/landlock/wallet"

	_ "landlock.dev/landlock/storage/grpccas"
	_ "landlock.dev/landlock/storage/ipfs"
	_ "landlock.dev/landlock/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "mint":
		return cmdMint(args[1:], out, errOut)
	case "lands":
		return cmdLands(args[1:], out, errOut)
	case "decrypt":
		return cmdDecrypt(args[1:], out, errOut)
	case "request":
		return cmdRequest(args[1:], out, errOut)
	case "approve":
		return cmdApprove(args[1:], out, errOut)
	case "retry":
		return cmdRetry(args[1:], out, errOut)
	case "status":
		return cmdStatus(args[1:], out, errOut)
	case "pending":
		return cmdPending(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "landlock: land-title transfer CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  landlock key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  landlock key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  landlock key list")
	fmt.Fprintln(w, "  landlock key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  landlock mint --street-number <n> --street-name <s> --region <s> --city <s> --state <s> <signer> <services> [--backend <name>]")
	fmt.Fprintln(w, "  landlock lands [--owner <0x..>] --ledger <host:port> [<signer>]")
	fmt.Fprintln(w, "  landlock decrypt --token <id> <signer> <services> [--backend <name>]")
	fmt.Fprintln(w, "  landlock request --token <id> --ledger <host:port> <signer>")
	fmt.Fprintln(w, "  landlock approve --token <id> <signer> <services>")
	fmt.Fprintln(w, "  landlock retry --token <id> <signer> <services>")
	fmt.Fprintln(w, "  landlock status --token <id> --ledger <host:port>")
	fmt.Fprintln(w, "  landlock pending --token <id> --ledger <host:port>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - <signer> is --seed-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>")
	fmt.Fprintln(w, "  - <services> is --ledger <host:port> --custody <host:port>")
	fmt.Fprintln(w, "  - keys are stored under ~/.landlock/keys/<name> (0600 seed files)")
	fmt.Fprintln(w, "  - approve performs the ledger transfer first, then the key hand-off;")
	fmt.Fprintln(w, "    if only the key hand-off fails, re-run it alone with 'landlock retry'")
	fmt.Fprintln(w, "  - decrypt needs a CAS backend (--backend=grpc --grpc-target ... for landlock-casd)")
}

// signerFlags is the signer-resolution flag group shared by every command
// that signs.
type signerFlags struct {
	seedHex    string
	signerName string
	signerRole string
	keyFile    string
}

func (sf *signerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&sf.seedHex, "seed-hex", "", "ed25519 seed as 64 hex chars")
	fs.StringVar(&sf.signerName, "signer", "", "Use a stored key by name (from 'landlock key init')")
	fs.StringVar(&sf.signerRole, "signer-role", "", "When using --signer, use a derived role key")
	fs.StringVar(&sf.keyFile, "key-file", "", "Path to a seed file (hex) created by 'landlock key init/derive'")
}

func (sf *signerFlags) open(errOut io.Writer) (*wallet.Local, int) {
	if sf.seedHex == "" && sf.signerName == "" && sf.keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return nil, 2
	}
	if sf.seedHex != "" && (sf.signerName != "" || sf.keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return nil, 2
	}
	if sf.signerName != "" && sf.keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return nil, 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, 1
	}
	w, err := wallet.Open(ks, sf.seedHex, sf.signerName, sf.signerRole, sf.keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return nil, 2
	}
	return w, 0
}

// serviceFlags selects the ledger and custody endpoints.
type serviceFlags struct {
	ledgerTarget  string
	custodyTarget string
	dialTimeout   time.Duration
	rpcTimeout    time.Duration
	verifyAttest  bool
}

func (svf *serviceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&svf.ledgerTarget, "ledger", "", "Ledger gRPC target host:port (landlock-ledgerd)")
	fs.StringVar(&svf.custodyTarget, "custody", "", "Custody gRPC target host:port (landlock-custodyd)")
	fs.DurationVar(&svf.dialTimeout, "dial-timeout", 5*time.Second, "Dial timeout for ledger/custody connections")
	fs.DurationVar(&svf.rpcTimeout, "rpc-timeout", 30*time.Second, "Per-RPC timeout for ledger/custody calls")
	fs.BoolVar(&svf.verifyAttest, "verify-attestation", false, "Require and verify custody service attestations on auth challenges")
}

func (svf *serviceFlags) dialLedger(errOut io.Writer) (*grpcledger.Client, int) {
	if svf.ledgerTarget == "" {
		fmt.Fprintln(errOut, "missing --ledger")
		return nil, 2
	}
	c, err := grpcledger.Dial(svf.ledgerTarget, grpcledger.DialOptions{Timeout: svf.dialTimeout})
	if err != nil {
		fmt.Fprintf(errOut, "ledger: %v\n", err)
		return nil, 1
	}
	c.Timeout = svf.rpcTimeout
	return c, 0
}

func (svf *serviceFlags) dialCustody(errOut io.Writer) (*grpccustody.Client, int) {
	if svf.custodyTarget == "" {
		fmt.Fprintln(errOut, "missing --custody")
		return nil, 2
	}
	c, err := grpccustody.Dial(svf.custodyTarget, grpccustody.DialOptions{Timeout: svf.dialTimeout})
	if err != nil {
		fmt.Fprintf(errOut, "custody: %v\n", err)
		return nil, 1
	}
	c.Timeout = svf.rpcTimeout
	return c, 0
}

func (svf *serviceFlags) authOptions() auth.Options {
	return auth.Options{VerifyAttestation: svf.verifyAttest}
}

func cmdMint(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	var svf serviceFlags
	sf.register(fs)
	svf.register(fs)

	var streetNumber int
	var streetName, region, city, state string
	var timestamp int64
	backend := fs.String("backend", "grpc", "CAS backend name")
	fs.IntVar(&streetNumber, "street-number", 0, "Parcel street number")
	fs.StringVar(&streetName, "street-name", "", "Parcel street name")
	fs.StringVar(&region, "region", "", "Parcel region")
	fs.StringVar(&city, "city", "", "Parcel city")
	fs.StringVar(&state, "state", "", "Parcel state")
	fs.Int64Var(&timestamp, "timestamp", 0, "Parcel timestamp (unix seconds; defaults to now)")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if streetName == "" || region == "" || city == "" || state == "" {
		fmt.Fprintln(errOut, "missing parcel fields: --street-name, --region, --city, --state are required")
		return 2
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	w, code := sf.open(errOut)
	if code != 0 {
		return code
	}
	addr, err := w.Address()
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return 1
	}

	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()
	cust, code := svf.dialCustody(errOut)
	if code != 0 {
		return code
	}
	defer cust.Close()

	cas, closeFn, err := casregistry.Open(*backend, casregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	ctx := context.Background()
	v := vault.Open(cas, cust, w)
	v.Auth = svf.authOptions()

	parcel := model.Parcel{
		StreetNumber: streetNumber,
		StreetName:   streetName,
		Region:       region,
		City:         city,
		State:        state,
		Timestamp:    timestamp,
	}
	pointer, err := v.UploadEncrypted(ctx, parcel)
	if err != nil {
		fmt.Fprintf(errOut, "upload: %v\n", err)
		return 1
	}

	token, conf, err := led.Mint(ctx, addr, pointer)
	if err != nil {
		fmt.Fprintf(errOut, "mint: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Token: %d\n", token)
	fmt.Fprintf(out, "Pointer: %s\n", pointer)
	fmt.Fprintf(out, "Owner: %s\n", conf.To)
	fmt.Fprintf(errOut, "confirmed seq=%d at=%s\n", conf.Seq, conf.At.Format(time.RFC3339))
	return 0
}

func cmdLands(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("lands", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	var svf serviceFlags
	sf.register(fs)
	svf.register(fs)
	ownerStr := fs.String("owner", "", "List titles of this address instead of the signer's")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	var owner model.Address
	if *ownerStr != "" {
		var err error
		owner, err = model.ParseAddress(*ownerStr)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --owner: %v\n", err)
			return 2
		}
	} else {
		w, code := sf.open(errOut)
		if code != 0 {
			return code
		}
		var err error
		owner, err = w.Address()
		if err != nil {
			fmt.Fprintf(errOut, "signer: %v\n", err)
			return 1
		}
	}

	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()

	titles, err := ledger.TitlesOwnedBy(context.Background(), led, owner)
	if err != nil {
		fmt.Fprintf(errOut, "enumerate: %v\n", err)
		return 1
	}
	for _, t := range titles {
		fmt.Fprintf(out, "%d\t%s\n", t.ID, t.Pointer)
	}
	return 0
}

func cmdDecrypt(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	var svf serviceFlags
	sf.register(fs)
	svf.register(fs)
	token := fs.Uint64("token", 0, "Title token id")
	pointerFlag := fs.String("pointer", "", "Content pointer (skips the ledger lookup)")
	backend := fs.String("backend", "grpc", "CAS backend name")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	w, code := sf.open(errOut)
	if code != 0 {
		return code
	}
	cust, code := svf.dialCustody(errOut)
	if code != 0 {
		return code
	}
	defer cust.Close()

	ctx := context.Background()
	pointer := *pointerFlag
	if pointer == "" {
		led, code := svf.dialLedger(errOut)
		if code != 0 {
			return code
		}
		defer led.Close()
		var err error
		pointer, err = led.TokenURI(ctx, model.TokenID(*token))
		if err != nil {
			fmt.Fprintf(errOut, "token uri: %v\n", err)
			return 1
		}
	}

	cas, closeFn, err := casregistry.Open(*backend, casregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	v := vault.Open(cas, cust, w)
	v.Auth = svf.authOptions()
	parcel, err := v.Reveal(ctx, pointer)
	if err != nil {
		fmt.Fprintf(errOut, "decrypt: %v\n", err)
		return 1
	}
	b, err := json.MarshalIndent(parcel, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	_, _ = out.Write(append(b, '\n'))
	return 0
}

func cmdRequest(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	var svf serviceFlags
	sf.register(fs)
	svf.register(fs)
	token := fs.Uint64("token", 0, "Title token id")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	w, code := sf.open(errOut)
	if code != 0 {
		return code
	}
	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()

	// The request phase never touches custody.
	co := coordinator.New(led, nil, w, coordinator.Options{Auth: svf.authOptions()})
	req, err := co.RequestPurchase(context.Background(), model.TokenID(*token))
	if err != nil {
		fmt.Fprintf(errOut, "request: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Requested token %d\n", req.Token)
	fmt.Fprintf(out, "Buyer: %s\n", req.Buyer)
	fmt.Fprintf(out, "Owner at request time: %s\n", req.PreviousOwner)
	return 0
}

func cmdApprove(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	var svf serviceFlags
	sf.register(fs)
	svf.register(fs)
	token := fs.Uint64("token", 0, "Title token id")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	w, code := sf.open(errOut)
	if code != 0 {
		return code
	}
	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()
	cust, code := svf.dialCustody(errOut)
	if code != 0 {
		return code
	}
	defer cust.Close()

	ctx := context.Background()
	co := coordinator.New(led, cust, w, coordinator.Options{Auth: svf.authOptions()})
	if _, err := co.AdoptRequest(ctx, model.TokenID(*token)); err != nil {
		fmt.Fprintf(errOut, "approve: %v\n", err)
		return 1
	}
	conf, err := co.ApprovePurchase(ctx, model.TokenID(*token))
	if err != nil {
		if model.IsKind(err, model.KindInconsistent) {
			fmt.Fprintf(errOut, "approve: %v\n", err)
			fmt.Fprintf(errOut, "the ledger transfer to %s is committed; re-run the key hand-off with:\n", conf.To)
			fmt.Fprintf(errOut, "  landlock retry --token %d ...\n", *token)
			return 1
		}
		fmt.Fprintf(errOut, "approve: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Transferred token %d\n", conf.Token)
	fmt.Fprintf(out, "New owner: %s\n", conf.To)
	fmt.Fprintf(errOut, "confirmed seq=%d at=%s\n", conf.Seq, conf.At.Format(time.RFC3339))
	return 0
}

func cmdRetry(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("retry", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	var svf serviceFlags
	sf.register(fs)
	svf.register(fs)
	token := fs.Uint64("token", 0, "Title token id")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	w, code := sf.open(errOut)
	if code != 0 {
		return code
	}
	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()
	cust, code := svf.dialCustody(errOut)
	if code != 0 {
		return code
	}
	defer cust.Close()

	ctx := context.Background()
	co := coordinator.New(led, cust, w, coordinator.Options{Auth: svf.authOptions()})
	req, err := co.AdoptConfirmed(ctx, model.TokenID(*token))
	if err != nil {
		fmt.Fprintf(errOut, "retry: %v\n", err)
		return 1
	}
	if err := co.RetryKeyTransfer(ctx, model.TokenID(*token)); err != nil {
		fmt.Fprintf(errOut, "retry: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Key hand-off complete for token %d\n", req.Token)
	fmt.Fprintf(out, "Holder: %s\n", req.Buyer)
	return 0
}

func cmdStatus(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var svf serviceFlags
	svf.register(fs)
	token := fs.Uint64("token", 0, "Title token id")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()

	ctx := context.Background()
	id := model.TokenID(*token)
	owner, err := led.CurrentOwner(ctx, id)
	if err != nil {
		fmt.Fprintf(errOut, "status: %v\n", err)
		return 1
	}
	pointer, err := led.TokenURI(ctx, id)
	if err != nil {
		fmt.Fprintf(errOut, "status: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Token: %d\n", id)
	fmt.Fprintf(out, "Owner: %s\n", owner)
	fmt.Fprintf(out, "Pointer: %s\n", pointer)

	buyer, err := led.PendingBuyer(ctx, id)
	switch {
	case err == nil:
		fmt.Fprintf(out, "Pending buyer: %s\n", buyer)
	case isNoPending(err):
		fmt.Fprintln(out, "Pending buyer: none")
	default:
		fmt.Fprintf(errOut, "status: %v\n", err)
		return 1
	}
	return 0
}

// cmdPending prints just the pending buyer, for scripting. Exit 1 when
// there is no pending request.
func cmdPending(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("pending", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var svf serviceFlags
	svf.register(fs)
	token := fs.Uint64("token", 0, "Title token id")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	led, code := svf.dialLedger(errOut)
	if code != 0 {
		return code
	}
	defer led.Close()

	buyer, err := led.PendingBuyer(context.Background(), model.TokenID(*token))
	if err != nil {
		if isNoPending(err) {
			fmt.Fprintln(errOut, "no pending request")
			return 1
		}
		fmt.Fprintf(errOut, "pending: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, buyer)
	return 0
}

func isNoPending(err error) bool {
	return errors.Is(err, ledger.ErrNoPendingRequest)
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "landlock key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  landlock key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  landlock key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  landlock key list")
	fmt.Fprintln(w, "  landlock key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.landlock/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	address, rootPath, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created account: %s\n", address)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. registrar, escrow)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	address, rolePath, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created account: %s\n", address)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports derived role key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	address, err := ks.ExportKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, address)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Identifier)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}
