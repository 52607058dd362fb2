// Command modm-devices queries modm device description files.
//
// Usage:
//
//	modm-devices <command> [flags] [files...]
//
// Files are device documents (XML or YAML) or directories containing them.
// Without files the paths from the configuration (-config, or the
// MODM_DEVICES_PATHS environment variable) are used.
//
// Commands:
//
//	list     List part names
//	show     Print the canonical property tree of one device
//	drivers  Summarize the drivers of one device
//	lint     Check devices for inconsistent data
//	keys     Find the minimal identifier keys selecting a set of devices
//	index    Write or query the part name index
//	events   Print a captured resolution event log
//	shell    Interactive shell
//
// Examples:
//
//	# List every STM32F4 device
//	modm-devices list -match 'stm32f4*' devices/stm32
//
//	# Show the GPIO driver of one device as YAML
//	modm-devices show -device stm32f407vgt6 -path driver/gpio -format yaml devices/stm32
//
//	# Check all devices and capture events for later analysis
//	modm-devices lint -events run.cbor devices/
//	modm-devices events -failed run.cbor
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modm-io/modm-devices-go/cmd/modm-devices/commands"
	"github.com/modm-io/modm-devices-go/internal/logging"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	// Library code that logs through the default logger gets the same
	// handler as the commands.
	slog.SetDefault(logging.Default().Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "list":
		exitCode = commands.RunList(ctx, args, os.Stdout, os.Stderr)
	case "show":
		exitCode = commands.RunShow(ctx, args, os.Stdout, os.Stderr)
	case "drivers":
		exitCode = commands.RunDrivers(ctx, args, os.Stdout, os.Stderr)
	case "lint":
		exitCode = commands.RunLint(ctx, args, os.Stdout, os.Stderr)
	case "keys":
		exitCode = commands.RunKeys(ctx, args, os.Stdout, os.Stderr)
	case "index":
		exitCode = commands.RunIndex(ctx, args, os.Stdout, os.Stderr)
	case "events":
		exitCode = commands.RunEvents(ctx, args, os.Stdout, os.Stderr)
	case "shell":
		exitCode = commands.RunShell(ctx, args, os.Stdout, os.Stderr)
	case "help", "-h", "-help", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Printf("modm-devices version %s\n", commands.Version)
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	stop()
	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`modm-devices - modm device description tool

Usage:
  modm-devices <command> [options] [files...]

Commands:
  list      List part names
  show      Print the canonical property tree of one device
  drivers   Summarize the drivers of one device
  lint      Check devices for inconsistent data
  keys      Find the minimal identifier keys selecting a set of devices
  index     Write or query the part name index
  events    Print a captured resolution event log
  shell     Interactive shell
  help      Show this help
  version   Show version

Use "modm-devices <command> -h" for more information about a command.`)
}
