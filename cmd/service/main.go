package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"restpki-batch/internal/service"
	"restpki-batch/pkg/version"
)

func main() {
	// Define command line flags
	install := flag.Bool("install", false, "Install Windows service")
	uninstall := flag.Bool("uninstall", false, "Uninstall Windows service")
	start := flag.Bool("start", false, "Start the service")
	stop := flag.Bool("stop", false, "Stop the service")
	debug := flag.Bool("debug", false, "Run in debug/console mode")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("REST PKI Batch Signature Service\n")
		fmt.Printf("Version: %s\n", version.Version)
		os.Exit(0)
	}

	// Get executable path
	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}

	// Change to executable directory for config loading
	if err := os.Chdir(filepath.Dir(exePath)); err != nil {
		log.Printf("Warning: could not change to executable directory: %v", err)
	}

	switch {
	case *install:
		err = service.InstallService(exePath)
		if err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		fmt.Println("Service installed successfully")

		// Start the service after installation
		err = service.StartService()
		if err != nil {
			log.Printf("Warning: Failed to start service: %v", err)
			fmt.Println("You may need to start the service manually")
		} else {
			fmt.Println("Service started")
		}

	case *uninstall:
		// Try to stop service first
		_ = service.StopService()

		err = service.UninstallService()
		if err != nil {
			log.Fatalf("Failed to uninstall service: %v", err)
		}
		fmt.Println("Service uninstalled successfully")

	case *start:
		err = service.StartService()
		if err != nil {
			log.Fatalf("Failed to start service: %v", err)
		}
		fmt.Println("Service started")

	case *stop:
		err = service.StopService()
		if err != nil {
			log.Fatalf("Failed to stop service: %v", err)
		}
		fmt.Println("Service stopped")

	default:
		// Check if running as Windows service
		isService, err := service.IsWindowsService()
		if err != nil {
			log.Printf("Warning: could not determine if running as service: %v", err)
		}

		app := service.NewApplication()

		switch {
		case isService:
			err = service.RunService(false, app)
		case *debug:
			err = service.RunService(true, app)
		default:
			fmt.Println("REST PKI Batch Signature Service")
			fmt.Printf("Version: %s\n", version.Version)
			fmt.Println("Running in console mode. Press Ctrl+C to stop.")
			fmt.Println()
			fmt.Println("Available commands:")
			fmt.Println("  -install    Install as Windows service")
			fmt.Println("  -uninstall  Uninstall Windows service")
			fmt.Println("  -start      Start the service")
			fmt.Println("  -stop       Stop the service")
			fmt.Println("  -debug      Run in debug mode")
			fmt.Println("  -version    Show version")
			fmt.Println()

			err = app.Run()
		}
		if err != nil {
			log.Fatalf("Service exited: %v", err)
		}
	}
}
