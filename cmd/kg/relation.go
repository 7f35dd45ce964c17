package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

var (
	relationWeight     float64
	relationConfidence float64
)

var relationCmd = &cobra.Command{
	Use:   "relation",
	Short: "create relations",
}

var relationCreateCmd = &cobra.Command{
	Use:   "create FROM TO TYPE",
	Short: "create a directed typed relation FROM -> TO (endpoints need not exist yet)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		r := &kgtypes.Relation{From: args[0], To: args[1], RelationType: args[2]}
		if cmd.Flags().Changed("weight") {
			r.Weight = &relationWeight
		}
		if cmd.Flags().Changed("confidence") {
			r.Confidence = &relationConfidence
		}
		if err := e.Backend.AppendRelation(cmd.Context(), r); err != nil {
			return err
		}
		if jsonOutput {
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("%s -[%s]-> %s\n", r.From, r.RelationType, r.To)
		return nil
	},
}

func init() {
	relationCreateCmd.Flags().Float64Var(&relationWeight, "weight", 0, "relation weight")
	relationCreateCmd.Flags().Float64Var(&relationConfidence, "confidence", 0, "relation confidence 0-1")
	relationCmd.AddCommand(relationCreateCmd)
}
