package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	romprops "github.com/marcellodash/rom-properties"
	"github.com/marcellodash/rom-properties/internal/artcache"
	"github.com/marcellodash/rom-properties/internal/config"
	"github.com/marcellodash/rom-properties/internal/nintendo"
	"github.com/marcellodash/rom-properties/internal/syspaths"
	"github.com/marcellodash/rom-properties/internal/wad"
	"github.com/marcellodash/rom-properties/pkg/fields"
	"github.com/marcellodash/rom-properties/pkg/keystore"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: rominfo <command> [arguments]")
		fmt.Println("Commands:")
		fmt.Println("  info [-k keyfile] [-lang locale] [-j] [-v] <file>")
		fmt.Println("  artwork [-t type] [-s size] [-cached] <file>")
		fmt.Println("  cache <put|get|del> <key> [file]")
		fmt.Println("  keys template [path]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		runInfo(os.Args[2:])
	case "artwork":
		runArtwork(os.Args[2:])
	case "cache":
		runCache(os.Args[2:])
	case "keys":
		runKeys(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func runInfo(args []string) {
	infoCmd := flag.NewFlagSet("info", flag.ExitOnError)
	keyFile := infoCmd.String("k", "", "key database path")
	locale := infoCmd.String("lang", "", "banner locale override, e.g. ja or de_DE")
	asJSON := infoCmd.Bool("j", false, "print as JSON")
	verbose := infoCmd.Bool("v", false, "debug logging")
	infoCmd.Parse(args)
	if infoCmd.NArg() < 1 {
		fmt.Println("Usage: rominfo info [-k keyfile] [-lang locale] [-j] [-v] <file>")
		os.Exit(1)
	}

	conf := loadConfig()
	if *keyFile == "" {
		*keyFile = conf.KeyFile
	}
	if *locale == "" {
		*locale = conf.Language
	}

	cfg := &romprops.Config{
		KeyFile: *keyFile,
		Logger:  newLogger(*verbose),
	}
	if *locale != "" {
		lang := nintendo.WiiLanguageFromLocale(*locale)
		cfg.Language = func() int { return lang }
	}

	rd, err := romprops.OpenFile(infoCmd.Arg(0), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer rd.Close()

	if *asJSON {
		printJSON(rd)
		return
	}

	fmt.Printf("%-16s%s\n", "System:", rd.SystemName())
	for _, f := range rd.Fields() {
		printField(f)
	}
	if md, err := rd.Metadata(); err == nil {
		fmt.Printf("%-16s%s\n", "Meta title:", md.Title)
	}
}

func printField(f fields.Field) {
	out := os.Stdout
	if f.Flags&fields.Warning != 0 {
		out = os.Stderr
	}
	first := true
	for _, line := range splitLines(f.Value) {
		if first {
			fmt.Fprintf(out, "%-16s%s\n", f.Name+":", line)
			first = false
			continue
		}
		fmt.Fprintf(out, "%-16s%s\n", "", line)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

type jsonField struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Warning   bool   `json:"warning,omitempty"`
	Monospace bool   `json:"monospace,omitempty"`
}

type jsonOutput struct {
	System string      `json:"system"`
	Fields []jsonField `json:"fields"`
	Title  string      `json:"title,omitempty"`
}

func printJSON(rd romprops.RomData) {
	out := jsonOutput{System: rd.SystemName()}
	for _, f := range rd.Fields() {
		out.Fields = append(out.Fields, jsonField{
			Name:      f.Name,
			Value:     f.Value,
			Warning:   f.Flags&fields.Warning != 0,
			Monospace: f.Flags&fields.Monospace != 0,
		})
	}
	if md, err := rd.Metadata(); err == nil {
		out.Title = md.Title
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func runArtwork(args []string) {
	artCmd := flag.NewFlagSet("artwork", flag.ExitOnError)
	typeName := artCmd.String("t", "coverfull", "image type: cover, cover3D, coverfull, wwtitle")
	size := artCmd.Int("s", 0, "preferred pixel size, 0 for default")
	cached := artCmd.Bool("cached", false, "mark URLs already in the local cache")
	artCmd.Parse(args)
	if artCmd.NArg() < 1 {
		fmt.Println("Usage: rominfo artwork [-t type] [-s size] [-cached] <file>")
		os.Exit(1)
	}

	t, err := parseArtworkType(*typeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	rd, err := romprops.OpenFile(artCmd.Arg(0), &romprops.Config{Logger: newLogger(false)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer rd.Close()

	urls, err := rd.ArtworkURLs(t, *size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving artwork: %v\n", err)
		os.Exit(1)
	}

	var cache *artcache.Store
	if *cached {
		cache = openCache("")
		defer cache.Close()
	}

	for _, u := range urls {
		marker := ""
		if cache != nil {
			if ok, err := cache.Has(u.CacheKey); err == nil && ok {
				marker = " [cached]"
			}
		}
		fmt.Printf("%s (%dx%d)%s\n", u.URL, u.Width, u.Height, marker)
	}
}

func parseArtworkType(name string) (fields.ArtworkType, error) {
	switch name {
	case "cover":
		return fields.ArtworkCover, nil
	case "cover3D":
		return fields.ArtworkCover3D, nil
	case "coverfull":
		return fields.ArtworkCoverFull, nil
	case "wwtitle":
		return fields.ArtworkTitleScreen, nil
	default:
		return 0, fmt.Errorf("unknown artwork type: %s", name)
	}
}

func runCache(args []string) {
	cacheCmd := flag.NewFlagSet("cache", flag.ExitOnError)
	dir := cacheCmd.String("d", "", "cache directory (default: user cache)")
	cacheCmd.Parse(args)
	if cacheCmd.NArg() < 2 {
		fmt.Println("Usage: rominfo cache [-d dir] <put|get|del> <key> [file]")
		os.Exit(1)
	}

	cache := openCache(*dir)
	defer cache.Close()

	verb, key := cacheCmd.Arg(0), cacheCmd.Arg(1)
	switch verb {
	case "put":
		if cacheCmd.NArg() < 3 {
			fmt.Println("Usage: rominfo cache put <key> <file>")
			os.Exit(1)
		}
		data, err := os.ReadFile(cacheCmd.Arg(2))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		if err := cache.Put(key, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Stored successfully.")
	case "get":
		data, ok, err := cache.Get(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "Key not cached: %s\n", key)
			os.Exit(1)
		}
		if cacheCmd.NArg() >= 3 {
			if err := os.WriteFile(cacheCmd.Arg(2), data, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Retrieved successfully.")
			return
		}
		os.Stdout.Write(data)
	case "del":
		if err := cache.Delete(key); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Deleted.")
	default:
		fmt.Printf("Unknown cache command: %s\n", verb)
		os.Exit(1)
	}
}

func runKeys(args []string) {
	if len(args) < 1 || args[0] != "template" {
		fmt.Println("Usage: rominfo keys template [path]")
		os.Exit(1)
	}

	path := syspaths.DefaultKeyFile()
	if len(args) >= 2 {
		path = args[1]
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "No key file path available; pass one explicitly.")
		os.Exit(1)
	}

	if err := syspaths.EnsureDir(filepath.Dir(path)); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := keystore.WriteTemplate(path, wad.KeyNames()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing template: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Template written to %s\n", path)
}

func openCache(dir string) *artcache.Store {
	if dir == "" {
		dir = loadConfig().CacheDir
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "No cache directory available; pass -d.")
		os.Exit(1)
	}

	cache, err := artcache.NewStore(artcache.StoreConfig{
		Path:   dir,
		Logger: newLogger(false),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}
	return cache
}

func loadConfig() config.Config {
	conf, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		os.Exit(1)
	}
	return conf
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}
