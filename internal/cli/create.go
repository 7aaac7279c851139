package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightward/patientd/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a patient record",
		Run:   runCreate,
	}

	cmd.Flags().StringP("name", "n", "", "Patient name (required)")
	cmd.Flags().StringP("age", "a", "", "Patient age (required)")
	cmd.Flags().String("disease", "", "Patient disease (required)")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("age")
	cmd.MarkFlagRequired("disease")

	RootCmd.AddCommand(cmd)
}

func runCreate(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	age, _ := cmd.Flags().GetString("age")
	diseaseName, _ := cmd.Flags().GetString("disease")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	id, err := s.Create(cmd.Context(), store.Patient{
		Name:    name,
		Age:     age,
		Disease: diseaseName,
	})
	if err != nil {
		exitErr("create patient", err)
	}

	created, err := s.ReadByID(cmd.Context(), id)
	if err != nil {
		exitErr("read created patient", err)
	}

	if jsonFlag {
		json.NewEncoder(cmd.OutOrStdout()).Encode(created)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created patient %d: %s (age %s, %s)\n",
		created.ID, created.Name, created.Age, created.Disease)
}
