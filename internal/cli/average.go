package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightward/patientd/internal/aggregate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "average",
		Short: "Compute the average patient age",
		Run:   runAverage,
	}

	cmd.Flags().IntP("batch-size", "b", aggregate.DefaultBatchSize, "Records per aggregation batch")

	RootCmd.AddCommand(cmd)
}

func runAverage(cmd *cobra.Command, args []string) {
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patients, err := s.ReadAll(cmd.Context())
	if err != nil {
		exitErr("read patients", err)
	}

	result, err := aggregate.AverageAge(cmd.Context(), cliLogger(), patients, batchSize)
	if errors.Is(err, aggregate.ErrNoValidData) {
		fmt.Fprintln(os.Stderr, "no valid ages found")
		os.Exit(1)
	}
	if err != nil {
		exitErr("average age", err)
	}

	rounded := math.Round(result.Average*100) / 100

	if jsonFlag {
		json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"average_age":    rounded,
			"patient_count":  result.ValidCount,
			"total_patients": result.TotalCount,
		})
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "average age %.2f across %d of %d patients\n",
		rounded, result.ValidCount, result.TotalCount)
}
