package main

import (
	"fmt"
	"os"

	"fjacquet/camp-registration/cmd/classify"
	"fjacquet/camp-registration/cmd/export"
	"fjacquet/camp-registration/cmd/extract"
	"fjacquet/camp-registration/cmd/register"
	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/cmd/serve"
	"fjacquet/camp-registration/cmd/verify"
	"fjacquet/camp-registration/internal/config"
)

func init() {
	// .env first so that config and logging see its values
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(verify.Cmd)
	root.Cmd.AddCommand(register.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
