package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightward/patientd/internal/disease"
)

func init() {
	cmd := &cobra.Command{
		Use:   "diseases",
		Short: "Show the scraped disease reference data",
		Run:   runDiseases,
	}

	cmd.Flags().String("snapshot", "", "Snapshot path (default: $SCRAPED_JSON_PATH or ./patient_app/scraped_diseases.json)")

	RootCmd.AddCommand(cmd)
}

func snapshotPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("snapshot"); path != "" {
		return path
	}
	if env := os.Getenv("SCRAPED_JSON_PATH"); env != "" {
		return env
	}
	return "./patient_app/scraped_diseases.json"
}

func runDiseases(cmd *cobra.Command, args []string) {
	cache := disease.NewCache(snapshotPath(cmd), cliLogger())

	entries, err := cache.Lookup()
	if errors.Is(err, disease.ErrSnapshotMissing) {
		fmt.Fprintln(os.Stderr, "no disease snapshot found, run the ingest binary first")
		os.Exit(1)
	}
	if err != nil {
		exitErr("read disease snapshot", err)
	}

	if jsonFlag {
		json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Disease, e.URL)
	}
}
