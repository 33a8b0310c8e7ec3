package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"landlock.dev/landlock/storage"
	"landlock.dev/landlock/storage/bundle"
	"landlock.dev/landlock/storage/casconfig"
	"landlock.dev/landlock/storage/casregistry"

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
	case "put":
		return cmdPut(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "export":
		return cmdExport(args[1:], out, errOut)
	case "import":
		return cmdImport(args[1:], out, errOut)
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
	fmt.Fprintln(w, "cascli: blob-store operator tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cascli put --backend localfs --localfs-dir <dir> <file>")
	fmt.Fprintln(w, "  cascli get --backend localfs --localfs-dir <dir> --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  cascli export --backend ... --cid <cid> [--cid ...] --out <bundle.tar>")
	fmt.Fprintln(w, "  cascli import --backend ... --in <bundle.tar>")
	fmt.Fprintln(w, "  cascli put --backend grpc --grpc-target <host:port> <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - ipfs backend shells out to the local Kubo 'ipfs' CLI")
	fmt.Fprintln(w, "  - grpc backend talks to landlock-casd (or any CAS gRPC server)")
	fmt.Fprintln(w, "  - all commands store raw blocks (CIDv1 raw + sha2-256)")
	fmt.Fprintln(w, "  - --cas-config <file> opens backends from a JSON config instead of")
	fmt.Fprintln(w, "    --backend; write_policy \"all\" replicates every write")
	fmt.Fprintln(w, "  - export/import move encrypted envelopes between stores; they never")
	fmt.Fprintln(w, "    see plaintext or touch the custody service")
}

type commonFlags struct {
	backend      string
	configPath   string
	listBackends bool
}

func (c *commonFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "localfs", "CAS backend name")
	fs.StringVar(&c.configPath, "cas-config", "", "JSON backend config (overrides --backend; see casconfig)")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
}

func (c *commonFlags) openCAS() (storage.CAS, func() error, error) {
	if c.configPath != "" {
		cfg, err := casconfig.LoadFile(c.configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(casregistry.UsageCLI, "")
	}
	return casregistry.Open(c.backend, casregistry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range casregistry.List(casregistry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdPut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: cascli put [common flags] <file>")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, err := cas.Put(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStr string
	var outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: cascli get [common flags] --cid <cid> [--out <file>]")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}

	b, err := cas.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStrs multiString
	var outPath string
	fs.Var(&cidStrs, "cid", "Envelope CID to export (repeatable)")
	fs.StringVar(&outPath, "out", "", "Output bundle file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if len(cidStrs) == 0 {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}

	ids := make([]cid.Cid, 0, len(cidStrs))
	for _, s := range cidStrs {
		id, err := cid.Decode(s)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --cid %s: %v\n", s, storage.ErrInvalidCID)
			return 2
		}
		ids = append(ids, id)
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(errOut, "create %s: %v\n", outPath, err)
		return 1
	}
	defer f.Close()

	if err := bundle.Export(f, cas, ids, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		fmt.Fprintln(errOut, err)
		_ = os.Remove(outPath)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "close %s: %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(out, "exported %d envelope(s) to %s\n", len(ids), outPath)
	return 0
}

func cmdImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var inPath string
	fs.StringVar(&inPath, "in", "", "Input bundle file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "open %s: %v\n", inPath, err)
		return 1
	}
	defer f.Close()

	if err := bundle.Import(f, cas); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "imported %s\n", inPath)
	return 0
}

type multiString []string

func (m *multiString) String() string { return strings.Join(*m, ",") }

func (m *multiString) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("empty value")
	}
	*m = append(*m, v)
	return nil
}
