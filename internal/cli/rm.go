package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a patient record by id",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("parse id", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	affected, err := s.Delete(cmd.Context(), id)
	if err != nil {
		exitErr("delete patient", err)
	}
	if affected == 0 {
		fmt.Fprintf(os.Stderr, "patient %d not found\n", id)
		os.Exit(1)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted patient %d\n", id)
}
