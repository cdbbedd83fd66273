package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"knot-api/internal/config"
	"knot-api/internal/service"
)

func main() {
	config.InitFlags()
	pflag.Parse()

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		cfg, err := config.NewConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n", cfg.App.Name)
		fmt.Printf("Version: %s\n", cfg.App.Version)
		os.Exit(0)
	}

	service.Main()
}
