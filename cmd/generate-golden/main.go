// Command generate-golden writes the reference values used by the recurrence
// tests. The values come from math/big, so they do not depend on the uint64
// code under test.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
)

// GoldenData is one entry of the golden file. Overflow marks an index whose
// term does not fit in 64 bits.
type GoldenData struct {
	N        int64  `json:"n"`
	Result   string `json:"result,omitempty"`
	Overflow bool   `json:"overflow,omitempty"`
}

// overflowTargets are indices past the last representable Fibonacci term.
var overflowTargets = []int64{93, 94, 1000}

func main() {
	outputDir := flag.String("out", "internal/recurrence/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "recurrence_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	data := generate()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %d entries at %s\n", len(data), filename)
}

// generate returns every representable term f(0)..f(92) of the Fibonacci
// recurrence with seeds 1, 1, followed by the overflow targets.
func generate() []GoldenData {
	var data []GoldenData
	limit := new(big.Int).SetUint64(math.MaxUint64)
	for n := int64(0); ; n++ {
		v := fibBig(n)
		if v.Cmp(limit) > 0 {
			break
		}
		data = append(data, GoldenData{N: n, Result: v.String()})
	}
	for _, n := range overflowTargets {
		data = append(data, GoldenData{N: n, Overflow: true})
	}
	return data
}

// fibBig is the oracle: f(0) = f(1) = 1, f(n) = f(n-1) + f(n-2).
func fibBig(n int64) *big.Int {
	a, b := big.NewInt(1), big.NewInt(1)
	for i := int64(1); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	if n == 0 {
		return a
	}
	return b
}
