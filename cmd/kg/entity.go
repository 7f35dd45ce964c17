package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

var (
	entityType         string
	entityObservations []string
	entityTags         []string
	entityImportance   int
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "create, get, or list entities",
}

var entityCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "create a new entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		entity := &kgtypes.Entity{
			Name:         args[0],
			EntityType:   entityType,
			Observations: entityObservations,
			Tags:         kgtypes.NormalizeTags(entityTags),
		}
		if cmd.Flags().Changed("importance") {
			entity.Importance = &entityImportance
		}
		if err := e.Backend.AppendEntity(cmd.Context(), entity); err != nil {
			return err
		}
		return printEntity(entity)
	},
}

var entityGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "print one entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		entity, ok := e.Backend.View().Entities[args[0]]
		if !ok {
			return fmt.Errorf("entity %q not found", args[0])
		}
		return printEntity(entity)
	},
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "list every entity name",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		var names []string
		for name := range e.Backend.View().Entities {
			names = append(names, name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	},
}

func printEntity(e *kgtypes.Entity) error {
	if jsonOutput {
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("%s (%s) tags=%v importance=%d\n", e.Name, e.EntityType, e.Tags, e.ImportanceOrDefault())
	return nil
}

func init() {
	entityCreateCmd.Flags().StringVar(&entityType, "type", "", "entity type")
	entityCreateCmd.Flags().StringSliceVar(&entityObservations, "observation", nil, "repeatable observation string")
	entityCreateCmd.Flags().StringSliceVar(&entityTags, "tag", nil, "repeatable tag")
	entityCreateCmd.Flags().IntVar(&entityImportance, "importance", kgtypes.DefaultImportance, "importance rank 0-10")

	entityCmd.AddCommand(entityCreateCmd, entityGetCmd, entityListCmd)
}
