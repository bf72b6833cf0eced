package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dom/crusadetome/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a command and returns the process exit code. Commands
// return instead of exiting so their deferred session cleanup always runs.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "check":
		return checkCmd(apiURL, args)
	case "normalize":
		return normalizeCmd(apiURL, args)
	case "new":
		return newCmd(apiURL, args)
	case "enums":
		return enumsCmd(apiURL)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`unitctl - Command line client for the unit data-entry server

USAGE:
  unitctl <command> [options]

COMMANDS:
  check      Load unit files and report parse errors, unknown choices and out-of-range stats
  normalize  Load a unit file and write it back in canonical form
  new        Write an empty unit file
  enums      List unit types and factions
  help       Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Check every unit file in a folder
  unitctl check units/*.json

  # Rewrite a hand-edited file into ./out/<unit_name>.json
  unitctl normalize --out=out "Hive Tyrant.json"

  # Start a new unit file
  unitctl new --name="Carnifex" --type=Monster --faction=Tyranids`)
}

func checkCmd(apiURL string, args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Println("Error: at least one file is required")
		fmt.Println("\nUsage: unitctl check <file>...")
		return 1
	}

	client := NewAPIClient(apiURL)
	failed := 0

	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("%s: FAILED\n  Error: %v\n", path, err)
			failed++
			continue
		}

		session, err := client.StartSession()
		if err != nil {
			fmt.Printf("Failed to start session: %v\n", err)
			return 1
		}

		unit, err := client.Load(session.Token, data)
		client.EndSession(session.Token)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Body.Error == "parse_error" {
				fmt.Printf("%s: INVALID\n  %s\n", path, apiErr.Body.Message)
			} else {
				fmt.Printf("%s: FAILED\n  Error: %v\n", path, err)
			}
			failed++
			continue
		}

		printReport(path, unit)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func normalizeCmd(apiURL string, args []string) int {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	out := fs.String("out", ".", "Directory to write the normalized file into")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Println("Error: exactly one file is required")
		fmt.Println("\nUsage: unitctl normalize [--out=DIR] <file>")
		return 1
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		return 1
	}

	client := NewAPIClient(apiURL)
	session, err := client.StartSession()
	if err != nil {
		fmt.Printf("Failed to start session: %v\n", err)
		return 1
	}
	defer client.EndSession(session.Token)

	unit, err := client.Load(session.Token, data)
	if err != nil {
		fmt.Printf("Failed to load %s: %v\n", fs.Arg(0), err)
		return 1
	}
	printReport(fs.Arg(0), unit)

	return writeSaved(client, session.Token, *out)
}

func newCmd(apiURL string, args []string) int {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	name := fs.String("name", "", "Unit name")
	unitType := fs.String("type", "", "Unit type")
	faction := fs.String("faction", "", "Faction")
	keywords := fs.String("keywords", "", "Comma separated keywords")
	out := fs.String("out", ".", "Directory to write the file into")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	session, err := client.StartSession()
	if err != nil {
		fmt.Printf("Failed to start session: %v\n", err)
		return 1
	}
	defer client.EndSession(session.Token)

	form := session.Unit.Form
	form.UnitName = *name
	form.UnitType = *unitType
	form.Faction = *faction
	form.Keywords = *keywords

	unit, err := client.Submit(session.Token, form)
	if err != nil {
		fmt.Printf("Failed to submit: %v\n", err)
		return 1
	}
	printReport(*name, unit)

	return writeSaved(client, session.Token, *out)
}

func enumsCmd(apiURL string) int {
	client := NewAPIClient(apiURL)
	enums, err := client.Enums()
	if err != nil {
		fmt.Printf("Failed to get enums: %v\n", err)
		return 1
	}

	fmt.Println("Unit types:")
	for i, t := range enums.UnitTypes {
		fmt.Printf("  %2d  %s\n", i, t)
	}
	fmt.Println()
	fmt.Println("Factions:")
	for i, f := range enums.Factions {
		fmt.Printf("  %2d  %s\n", i, f)
	}
	return 0
}

func writeSaved(client *APIClient, token, dir string) int {
	filename, data, err := client.Save(token)
	if err != nil {
		fmt.Printf("Failed to save: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf("Failed to create %s: %v\n", dir, err)
		return 1
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Printf("Failed to write %s: %v\n", path, err)
		return 1
	}
	fmt.Printf("Wrote %s\n", path)
	return 0
}

func printReport(label string, unit *UnitResponse) {
	report := unit.Report
	if report == nil {
		report = &service.Report{}
	}

	if len(report.Warnings) == 0 && len(report.Issues) == 0 {
		fmt.Printf("%s: OK\n", label)
		return
	}

	fmt.Printf("%s: OK with %d warning(s)\n", label, len(report.Warnings)+len(report.Issues))
	for _, w := range report.Warnings {
		fmt.Printf("  - %s\n", w)
	}
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue.String())
	}
}
