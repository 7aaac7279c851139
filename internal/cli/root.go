// Package cli implements the patientctl operator commands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brightward/patientd/internal/store"
)

var (
	dbPath   string
	jsonFlag bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "patientctl",
	Short: "Operate on the patient record store",
	Long:  "Operator CLI for the patientd record store: create, inspect and remove patient records, compute the average age and read the scraped disease reference data.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $PATIENT_DB_PATH or ./patient_app/patient_app.db)")
	RootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "JSON output")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("PATIENT_DB_PATH"); env != "" {
		return env
	}
	return "./patient_app/patient_app.db"
}

// cliLogger keeps store logging out of command output unless something goes
// wrong.
func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

func openStore() (*store.Store, error) {
	return store.Open(getDBPath(), cliLogger())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
