// Command tfhe-go manages key sets and runs engine operations from the shell.
//
//	tfhe-go keygen --home ./node
//	ct=$(tfhe-go encrypt 5 --type uint8 --home ./node)
//	tfhe-go math add "$ct" "$ct" --type uint8 --home ./node
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
