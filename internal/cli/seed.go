package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample patient data set",
		Run:   runSeed,
	}

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	created, err := s.Seed(cmd.Context())
	if err != nil {
		exitErr("seed patients", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d patients\n", created)
}
