package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/psychmag/psychmag/internal/bootstrap"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/version"
)

const usage = `Usage: %s [OPTIONS] COMMAND

Psychology magazine site API with admin-gated editing

Commands:
  server          Start the API server
  check-config    Validate the environment and exit
  version         Print version information

Options:
  -v, --version   Print version information
  -h, --help      Show this help message
`

func main() {
	showVersion := flag.Bool("version", false, "Print version information")
	flag.BoolVar(showVersion, "v", false, "Print version information (shorthand)")
	flag.Usage = func() { fmt.Fprintf(os.Stderr, usage, os.Args[0]) }
	flag.Parse()

	command := flag.Arg(0)
	if *showVersion {
		command = "version"
	}

	switch command {
	case "server":
		runServer()
	case "check-config":
		checkConfig()
	case "version":
		version.PrintVersion(os.Stdout)
	case "":
		flag.Usage()
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(2)
	}
}

func runServer() {
	cfg := config.Load()
	logger.InitLogger(cfg.LogLevel)
	logger.Infof("Starting %s", version.String())

	if err := bootstrap.Run(cfg); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}

func checkConfig() {
	if err := bootstrap.CheckConfig(config.Load()); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration OK")
}
