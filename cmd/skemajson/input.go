package main

import (
	"fmt"
	"io"
	"os"
)

// eachInput calls fn for every named file, or once for in when none are given.
// "-" names standard input.
func eachInput(in io.Reader, files []string, fn func(name string, r io.Reader) error) error {
	if len(files) == 0 {
		return fn("-", in)
	}
	for _, file := range files {
		if file == "-" {
			if err := fn(file, in); err != nil {
				return err
			}
			continue
		}
		if err := inputFile(file, fn); err != nil {
			return err
		}
	}
	return nil
}

func inputFile(file string, fn func(string, io.Reader) error) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", file, err)
	}
	defer f.Close()
	return fn(file, f)
}
