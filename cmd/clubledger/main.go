// Package main is the entry point of the clubledger binary.
// Its sole responsibility is handing control to the cobra command tree.
package main

import "github.com/pkordes/club-ledger/internal/cli"

func main() {
	cli.Execute()
}
