package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ogier/pflag"
)

const usageStr = `Usage: lzmago [OPTION]... [FILE]...
Compress or uncompress FILEs in the .lzma format (by default, compress FILES
in place).

  -c, --stdout      write to standard output and don't delete input files
  -d, --decompress  force decompression
  -f, --force       force overwrite of output file and compress links
  -h, --help        give this help
  -k, --keep        keep (don't delete) input files
  -q, --quiet       suppress all warnings
  -v, --verbose     verbose mode
  -V, --version     display version string
  -z, --compress    force compression
  -0 ... -9         compression preset; default is 6

With no file, or when FILE is -, read standard input.
`

const version = "0.1.0"

type options struct {
	stdout     bool
	decompress bool
	force      bool
	keep       bool
	quiet      bool
	verbose    bool
	preset     int
}

// preset holds a compression level given as a digit flag, e.g. -9. pflag
// has no concept of those, so they are filtered out of os.Args before
// parsing.
type preset int

const defaultPreset preset = 6

func (p *preset) filterArg(arg string) string {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return arg
	}
	buf := new(bytes.Buffer)
	buf.Grow(len(arg))
	for _, c := range arg {
		if '0' <= c && c <= '9' {
			*p = preset(c - '0')
			continue
		}
		buf.WriteRune(c)
	}
	return buf.String()
}

func (p *preset) filter() {
	args := make([]string, 1, len(os.Args))
	args[0] = os.Args[0]
	for i, arg := range os.Args[1:] {
		if arg == "--" {
			args = append(args, os.Args[1+i:]...)
			break
		}
		arg = p.filterArg(arg)
		if arg != "-" {
			args = append(args, arg)
		}
	}
	os.Args = args
}

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

func main() {
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	pflag.SetInterspersed(true)
	pflag.Usage = func() { usage(os.Stderr); os.Exit(1) }
	var (
		help        = pflag.BoolP("help", "h", false, "")
		stdout      = pflag.BoolP("stdout", "c", false, "")
		decompress  = pflag.BoolP("decompress", "d", false, "")
		force       = pflag.BoolP("force", "f", false, "")
		keep        = pflag.BoolP("keep", "k", false, "")
		quiet       = pflag.BoolP("quiet", "q", false, "")
		verbose     = pflag.BoolP("verbose", "v", false, "")
		showVersion = pflag.BoolP("version", "V", false, "")
		compress    = pflag.BoolP("compress", "z", false, "")
		level       = defaultPreset
	)

	level.filter()
	pflag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	if *showVersion {
		fmt.Printf("%s %s\n", cmdName, version)
		os.Exit(0)
	}
	if *decompress && *compress {
		log.Fatal("flags -d and -z are mutually exclusive")
	}

	opts := &options{
		stdout:     *stdout,
		decompress: *decompress,
		force:      *force,
		keep:       *keep,
		quiet:      *quiet,
		verbose:    *verbose,
		preset:     int(level),
	}
	if opts.quiet {
		log.SetOutput(io.Discard)
	}

	args := pflag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, path := range args {
		processFile(path, opts)
	}
}
