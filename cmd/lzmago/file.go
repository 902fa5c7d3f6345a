package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dwursteisen/lzma"
)

const lzmaSuffix = ".lzma"

type packer interface {
	outputPaths(path string) (outputPath, tmpPath string, err error)
	pack(w io.Writer, r io.Reader, opts *options) (n int64, err error)
}

type lzmaPacker struct{}

func (p lzmaPacker) outputPaths(path string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if path == "" {
		err = errors.New("path is empty")
		return
	}
	if strings.HasSuffix(path, lzmaSuffix) {
		err = fmt.Errorf("path %s has suffix %s -- ignored",
			path, lzmaSuffix)
		return
	}
	out = path + lzmaSuffix
	tmp = out + ".pack"
	return
}

func (p lzmaPacker) pack(w io.Writer, r io.Reader, opts *options) (n int64, err error) {
	cfg := lzma.Preset(opts.preset)
	if opts.verbose {
		cfg.Progress = func(in, out int64) {
			log.Printf("compressed %d bytes to %d bytes", in, out)
		}
	}
	bw := bufio.NewWriter(w)
	lw := lzma.NewWriterConfig(bw, cfg)
	n, err = io.Copy(lw, r)
	if err != nil {
		lw.Close()
		return
	}
	if err = lw.Close(); err != nil {
		return
	}
	err = bw.Flush()
	return
}

type lzmaUnpacker struct{}

func (u lzmaUnpacker) outputPaths(path string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if !strings.HasSuffix(path, lzmaSuffix) {
		err = fmt.Errorf("path %s has no suffix %s",
			path, lzmaSuffix)
		return
	}
	base := filepath.Base(path)
	if base == lzmaSuffix {
		err = fmt.Errorf(
			"path %s has only suffix %s as filename",
			path, lzmaSuffix)
		return
	}
	out = path[:len(path)-len(lzmaSuffix)]
	tmp = out + ".unpack"
	return
}

func (u lzmaUnpacker) pack(w io.Writer, r io.Reader, opts *options) (n int64, err error) {
	var cfg lzma.ReaderConfig
	if opts.verbose {
		cfg.Progress = func(in, out int64) {
			log.Printf("decompressed %d bytes to %d bytes", in, out)
		}
	}
	br := bufio.NewReader(r)
	lr := lzma.NewReaderConfig(br, cfg)
	n, err = io.Copy(w, lr)
	if err != nil {
		lr.Close()
		return
	}
	err = lr.Close()
	return
}

// signalHandler removes the temporary file if the process is terminated
// mid-operation. Closing the returned channel disarms it.
func signalHandler(tmpPath string) chan<- struct{} {
	quit := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, termsigs...)
	go func() {
		select {
		case <-quit:
			signal.Stop(sigch)
			return
		case <-sigch:
			if tmpPath != "-" {
				os.Remove(tmpPath)
			}
			os.Exit(7)
		}
	}()
	return quit
}

func packFile(pck packer, path, tmpPath string, opts *options) error {
	var err error

	var r *os.File
	if path == "-" {
		r = os.Stdin
	} else {
		fi, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", path)
		}
		r, err = os.Open(path)
		if err != nil {
			return err
		}
		fi, err = r.Stat()
		if err != nil {
			r.Close()
			return err
		}
		if !fi.Mode().IsRegular() {
			r.Close()
			return fmt.Errorf("%s is not a regular file", path)
		}
	}
	defer func() {
		if err != nil {
			r.Close()
		} else {
			err = r.Close()
		}
	}()

	var w *os.File
	if tmpPath == "-" {
		w = os.Stdout
	} else {
		if opts.force {
			os.Remove(tmpPath)
		}
		w, err = os.OpenFile(tmpPath,
			os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				w.Close()
			} else {
				err = w.Close()
			}
		}()
		fi, err := w.Stat()
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", tmpPath)
		}
	}

	_, err = pck.pack(w, r, opts)
	return err
}

// userPathError is an os.PathError stripped of the operation name, which
// is noise for users of the command.
type userPathError struct {
	Path string
	Err  error
}

func (e *userPathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func userError(err error) error {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return err
	}
	return &userPathError{Path: pe.Path, Err: pe.Err}
}

func processFile(path string, opts *options) {
	var pck packer
	if opts.decompress {
		pck = lzmaUnpacker{}
	} else {
		pck = lzmaPacker{}
	}
	outputPath, tmpPath, err := pck.outputPaths(path)
	if err != nil {
		log.Print(userError(err))
		return
	}
	if opts.stdout {
		outputPath, tmpPath = "-", "-"
	}
	if outputPath != "-" {
		_, err = os.Lstat(outputPath)
		if err == nil && !opts.force {
			log.Printf("file %s exists", outputPath)
			return
		}
	}
	defer func() {
		if tmpPath != "-" {
			os.Remove(tmpPath)
		}
	}()
	quit := signalHandler(tmpPath)
	defer close(quit)

	if err = packFile(pck, path, tmpPath, opts); err != nil {
		log.Print(userError(err))
		return
	}
	if tmpPath != "-" && outputPath != "-" {
		if err = os.Rename(tmpPath, outputPath); err != nil {
			log.Print(userError(err))
			return
		}
	}
	if !opts.keep && !opts.stdout && path != "-" {
		if err = os.Remove(path); err != nil {
			log.Print(userError(err))
		}
	}
}
