package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgraph/kgcore/internal/query"
	"github.com/kgraph/kgcore/internal/search"
)

var (
	searchLimit   int
	searchSession string
	searchSince   string
	searchBefore  string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "run a basic, boolean, or fuzzy search, or let auto pick",
}

var searchBasicCmd = &cobra.Command{
	Use:   "basic QUERY",
	Short: "substring search over name/entityType/observations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		filter := search.BasicFilter{Query: args[0], Limit: searchLimit}
		now := time.Now().UTC()
		if searchSince != "" {
			t, err := query.ParseRelativeDate(searchSince, now)
			if err != nil {
				return err
			}
			filter.After = &t
		}
		if searchBefore != "" {
			t, err := query.ParseRelativeDate(searchBefore, now)
			if err != nil {
				return err
			}
			filter.Before = &t
		}

		result := e.Dispatcher.Basic(filter)
		return printJSONOrNames(result.Entities)
	},
}

var searchBooleanCmd = &cobra.Command{
	Use:   "boolean EXPR",
	Short: `evaluate a boolean query, e.g. "Developer AND (team-a OR team-b)"`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		names, err := e.Dispatcher.Boolean(args[0])
		if err != nil {
			return err
		}
		return printNameSet(names)
	},
}

var searchFuzzyCmd = &cobra.Command{
	Use:   "fuzzy QUERY",
	Short: "fuzzy token matching above the configured threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		matches, err := e.Dispatcher.Fuzzy(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var searchAutoCmd = &cobra.Command{
	Use:   "auto QUERY",
	Short: "let the dispatcher pick a method from the query's shape (§4.K)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.Dispatcher.Auto(cmd.Context(), args[0], searchSession)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func printJSONOrNames(entities any) error {
	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(data))
	return nil
}

func printNameSet(names map[string]struct{}) error {
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	searchCmd.PersistentFlags().IntVar(&searchLimit, "limit", 20, "result limit")
	searchBasicCmd.Flags().StringVar(&searchSince, "since", "", `lower bound, e.g. "7d" or "3 days ago"`)
	searchBasicCmd.Flags().StringVar(&searchBefore, "before", "", `upper bound, same syntax as --since`)
	searchAutoCmd.Flags().StringVar(&searchSession, "session", "cli", "session id for access recording")
	searchCmd.AddCommand(searchBasicCmd, searchBooleanCmd, searchFuzzyCmd, searchAutoCmd)
}
