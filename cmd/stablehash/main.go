package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/dataloop-ml/datakit/datautil"
	"github.com/dataloop-ml/datakit/nested"
	"github.com/dataloop-ml/datakit/stable"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Path to a JSON document (default: stdin)")
		label       = flag.String("label", "hashing", "Progress label for parallel leaf hashing")
		workers     = flag.Int("workers", 1, "Hash leaves in parallel with this many workers")
		dump        = flag.Bool("dump", false, "Dump the decoded canonical structure")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*inFile, *label, *workers, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inFile, label string, workers int, dump bool) error {
	data, err := readInput(inFile)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	encoded, err := stable.Serialize(doc)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	digest, err := stable.Digest(doc)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	fmt.Printf("Digest:     %s\n", digest)
	fmt.Printf("Cache path: %s\n", stable.ShardedPath(digest))
	fmt.Printf("Encoded:    %s (%d bytes)\n", datautil.SizeStr(int64(len(encoded))), len(encoded))

	if dump {
		decoded, err := stable.Deserialize(encoded)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		fmt.Printf("\n--- canonical structure ---\n")
		spew.Dump(decoded)
	}

	if workers > 1 {
		digests, err := nested.Map(func(leaf any) (any, error) {
			d, err := stable.Digest(leaf)
			if err != nil {
				return nil, err
			}
			return d, nil
		}, doc,
			nested.WithWorkers(workers),
			nested.WithProgress(true),
			nested.WithLabel(label))
		if err != nil {
			return fmt.Errorf("hash leaves: %w", err)
		}

		fmt.Printf("\nPer-leaf digests (%d workers):\n", workers)
		spew.Dump(digests)
	}

	return nil
}

func readInput(inFile string) ([]byte, error) {
	if inFile == "" || inFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(inFile)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
