// main is the entry point of the leadtime CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/leadtime/cmd"
	"github.com/huangsam/leadtime/core"
	"github.com/huangsam/leadtime/internal/store"
)

func main() {
	cmd.SetStoreManager(store.Manager)
	err := cmd.Execute()

	store.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Failed to stop profiling:", perr)
	}

	switch {
	case err == nil:
	case errors.Is(err, core.ErrCheckFailed):
		// The check result has already been printed
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
