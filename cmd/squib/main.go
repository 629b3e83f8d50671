// Squib CLI - tooling for compiled script images
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("squib")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	storePath := flag.String("store", "", "Image store database path (overrides squib.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: squib [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Manages compiled script images: raw image files, the project image\n")
		fmt.Fprintf(os.Stderr, "store, and wire envelopes for transfer between hosts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  info <file>              Show size and hash of an image file\n")
		fmt.Fprintf(os.Stderr, "  put [-name n] <file>     Store an image file in the project store\n")
		fmt.Fprintf(os.Stderr, "  get [-o out] <key>       Fetch an image by hash or name\n")
		fmt.Fprintf(os.Stderr, "  ls                       List stored images\n")
		fmt.Fprintf(os.Stderr, "  rm <hash>                Delete a stored image\n")
		fmt.Fprintf(os.Stderr, "  verify <file>            Check an image file against the store\n")
		fmt.Fprintf(os.Stderr, "  pack [-name n] [-o out] <file>   Seal an image into a wire envelope\n")
		fmt.Fprintf(os.Stderr, "  unpack [-o out] <envelope>       Extract an image from an envelope\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  squib put -name app.main build/main.img\n")
		fmt.Fprintf(os.Stderr, "  squib get -o main.img app.main\n")
		fmt.Fprintf(os.Stderr, "  squib pack -name app.main -o main.sqw build/main.img\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "info":
		err = cmdInfo(rest)
	case "put":
		err = cmdPut(*storePath, rest)
	case "get":
		err = cmdGet(*storePath, rest)
	case "ls":
		err = cmdLs(*storePath, rest)
	case "rm":
		err = cmdRm(*storePath, rest)
	case "verify":
		err = cmdVerify(*storePath, rest)
	case "pack":
		err = cmdPack(rest)
	case "unpack":
		err = cmdUnpack(rest)
	default:
		fmt.Fprintf(os.Stderr, "squib: unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "squib: %v\n", err)
		os.Exit(1)
	}
}
