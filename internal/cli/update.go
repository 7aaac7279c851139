package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brightward/patientd/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a patient record by id",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().StringP("name", "n", "", "Patient name (required)")
	cmd.Flags().StringP("age", "a", "", "Patient age (required)")
	cmd.Flags().String("disease", "", "Patient disease (required)")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("age")
	cmd.MarkFlagRequired("disease")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("parse id", err)
	}

	name, _ := cmd.Flags().GetString("name")
	age, _ := cmd.Flags().GetString("age")
	diseaseName, _ := cmd.Flags().GetString("disease")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	affected, err := s.Update(cmd.Context(), store.Patient{
		ID:      id,
		Name:    name,
		Age:     age,
		Disease: diseaseName,
	})
	if err != nil {
		exitErr("update patient", err)
	}
	if affected == 0 {
		fmt.Fprintf(os.Stderr, "patient %d not found\n", id)
		os.Exit(1)
	}

	updated, err := s.ReadByID(cmd.Context(), id)
	if err != nil {
		exitErr("read updated patient", err)
	}

	if jsonFlag {
		json.NewEncoder(cmd.OutOrStdout()).Encode(updated)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated patient %d: %s (age %s, %s)\n",
		updated.ID, updated.Name, updated.Age, updated.Disease)
}
