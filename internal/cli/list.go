package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all patient records",
		Run:   runList,
	}

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patients, err := s.ReadAll(cmd.Context())
	if err != nil {
		exitErr("list patients", err)
	}

	if jsonFlag {
		json.NewEncoder(cmd.OutOrStdout()).Encode(patients)
		return
	}

	if len(patients) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no patients")
		return
	}
	for _, p := range patients {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Age, p.Disease)
	}
}
