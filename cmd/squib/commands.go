package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/squib/buffer"
	"github.com/chazu/squib/manifest"
	"github.com/chazu/squib/store"
	"github.com/chazu/squib/wire"
)

// resolveStorePath picks the image store location: explicit flag first,
// then the nearest squib.toml, then the default path in the current
// directory.
func resolveStorePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return "", err
	}
	if m != nil {
		log.Infof("using store from %s", filepath.Join(m.Dir, "squib.toml"))
		return m.CachePath(), nil
	}
	return manifest.DefaultCachePath, nil
}

func openStore(flagValue string) (*store.Store, error) {
	path, err := resolveStorePath(flagValue)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	log.Infof("opening image store at %s", path)
	return store.Open(path)
}

// looksLikeHash reports whether key is a full lowercase-hex SHA-256, the
// store's native key form. Anything else is treated as an image name.
func looksLikeHash(key string) bool {
	if len(key) != 64 {
		return false
	}
	for _, c := range key {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib info <file>")
	}

	buf := buffer.New()
	if err := buf.LoadFromFile(fs.Arg(0)); err != nil {
		return err
	}

	fmt.Printf("file:  %s\n", fs.Arg(0))
	fmt.Printf("size:  %d bytes\n", buf.Size())
	fmt.Printf("hash:  %s\n", store.HashOf(buf.Data()))
	return nil
}

func cmdPut(storePath string, args []string) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	name := fs.String("name", "", "Name to store the image under (default: file base name)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib put [-name n] <file>")
	}

	path := fs.Arg(0)
	buf := buffer.New()
	if err := buf.LoadFromFile(path); err != nil {
		return err
	}

	if *name == "" {
		base := filepath.Base(path)
		*name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	hash, err := s.Put(*name, buf)
	if err != nil {
		return err
	}
	log.Infof("stored %s (%d bytes)", *name, buf.Size())
	fmt.Println(hash)
	return nil
}

func cmdGet(storePath string, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default: <name>.img)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib get [-o out] <hash-or-name>")
	}
	key := fs.Arg(0)

	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	var buf *buffer.Buffer
	if looksLikeHash(key) {
		buf, err = s.Get(key)
	} else {
		buf, _, err = s.GetByName(key)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		*out = key + ".img"
	}
	if err := buf.SaveToFile(*out); err != nil {
		return err
	}
	log.Infof("wrote %s (%d bytes)", *out, buf.Size())
	return nil
}

func cmdLs(storePath string, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	fs.Parse(args)

	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %8d  %s  %s\n",
			e.Hash[:12], e.Size, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Name)
	}
	return nil
}

func cmdRm(storePath string, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib rm <hash>")
	}

	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Delete(fs.Arg(0))
}

func cmdVerify(storePath string, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib verify <file>")
	}

	buf := buffer.New()
	if err := buf.LoadFromFile(fs.Arg(0)); err != nil {
		return err
	}
	hash := store.HashOf(buf.Data())

	s, err := openStore(storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	ok, err := s.Has(hash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %s not in store", fs.Arg(0), hash)
	}
	fmt.Printf("%s: ok (%s)\n", fs.Arg(0), hash)
	return nil
}

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	name := fs.String("name", "", "Image name recorded in the envelope (default: file base name)")
	out := fs.String("o", "", "Output envelope file (default: <file>.sqw)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib pack [-name n] [-o out] <file>")
	}
	path := fs.Arg(0)

	buf := buffer.New()
	if err := buf.LoadFromFile(path); err != nil {
		return err
	}

	if *name == "" {
		base := filepath.Base(path)
		*name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	env, err := wire.Seal(*name, buf)
	if err != nil {
		return err
	}
	data, err := wire.MarshalEnvelope(env)
	if err != nil {
		return err
	}

	if *out == "" {
		*out = strings.TrimSuffix(path, filepath.Ext(path)) + ".sqw"
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("writing envelope: %w", err)
	}
	log.Infof("sealed %s into %s (%d bytes)", *name, *out, len(data))
	return nil
}

func cmdUnpack(args []string) error {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	out := fs.String("o", "", "Output image file (default: <envelope name>.img)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: squib unpack [-o out] <envelope>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading envelope: %w", err)
	}
	env, err := wire.UnmarshalEnvelope(data)
	if err != nil {
		return err
	}
	buf, err := env.Open()
	if err != nil {
		return err
	}

	if *out == "" {
		*out = env.Name + ".img"
	}
	if err := buf.SaveToFile(*out); err != nil {
		return err
	}
	log.Infof("unpacked %s (%d bytes) from %s", env.Name, buf.Size(), fs.Arg(0))
	return nil
}
