package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brightward/patientd/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a patient record by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("parse id", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patient, err := s.ReadByID(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "patient %d not found\n", id)
		os.Exit(1)
	}
	if err != nil {
		exitErr("get patient", err)
	}

	if jsonFlag {
		json.NewEncoder(cmd.OutOrStdout()).Encode(patient)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", patient.ID, patient.Name, patient.Age, patient.Disease)
}
