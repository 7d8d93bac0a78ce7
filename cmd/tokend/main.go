package main

import (
	"fmt"
	"os"
	"tokend/internal/cli"
	"tokend/internal/di"
	"tokend/internal/structures"
)

func serve(flags *structures.CliFlags) error {
	app, cleanup, err := di.InitApp(flags)
	if err != nil {
		return err
	}
	defer cleanup()
	return app.Run()
}

func main() {
	if err := cli.NewRootCommand(di.InitEngine, serve).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tokend:", err)
		os.Exit(1)
	}
}
