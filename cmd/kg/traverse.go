package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgraph/kgcore/internal/graph"
)

var (
	traverseDirection string
	traverseMaxDepth  int
	traverseTopK      int
)

var traverseCmd = &cobra.Command{
	Use:   "traverse",
	Short: "graph traversal, shortest/all paths, and centrality",
}

func parseDirection() graph.Direction {
	switch traverseDirection {
	case "in":
		return graph.DirIn
	case "both":
		return graph.DirBoth
	default:
		return graph.DirOut
	}
}

var traverseBFSCmd = &cobra.Command{
	Use:   "bfs START",
	Short: "breadth-first visit order from START",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res := graph.BFS(e.Backend.View(), args[0], graph.TraverseOpts{Direction: parseDirection(), MaxDepth: traverseMaxDepth})
		return printJSON(res)
	},
}

var traverseDFSCmd = &cobra.Command{
	Use:   "dfs START",
	Short: "depth-first visit order from START",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res := graph.DFS(e.Backend.View(), args[0], graph.TraverseOpts{Direction: parseDirection(), MaxDepth: traverseMaxDepth})
		return printJSON(res)
	},
}

var traverseShortestPathCmd = &cobra.Command{
	Use:   "shortest-path FROM TO",
	Short: "shortest path between two entities",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		path, ok := graph.ShortestPath(e.Backend.View(), args[0], args[1], graph.TraverseOpts{Direction: parseDirection()})
		if !ok {
			return fmt.Errorf("no path from %q to %q", args[0], args[1])
		}
		return printJSON(path)
	},
}

var traverseAllPathsCmd = &cobra.Command{
	Use:   "all-paths FROM TO",
	Short: "every simple path between two entities up to --max-depth",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		paths, err := graph.AllPaths(ctx, e.Backend.View(), args[0], args[1], traverseMaxDepth, graph.TraverseOpts{Direction: parseDirection()})
		if err != nil {
			return err
		}
		return printJSON(paths)
	},
}

var traverseDegreeCmd = &cobra.Command{
	Use:   "degree-centrality",
	Short: "top-K entities by degree centrality",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		return printJSON(graph.DegreeCentrality(e.Backend.View(), parseDirection(), traverseTopK))
	},
}

var traverseBetweennessCmd = &cobra.Command{
	Use:   "betweenness-centrality",
	Short: "top-K entities by betweenness centrality (Brandes' algorithm)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		scores := graph.BetweennessCentrality(e.Backend.View(), graph.BetweennessOpts{})
		return printJSON(topKScored(scores, traverseTopK))
	},
}

var traversePageRankCmd = &cobra.Command{
	Use:   "pagerank",
	Short: "PageRank over the whole graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		scores := graph.PageRank(e.Backend.View(), graph.PageRankOpts{})
		return printJSON(topKScored(scores, traverseTopK))
	},
}

func topKScored(scores map[string]float64, k int) []graph.Scored {
	out := make([]graph.Scored, 0, len(scores))
	for name, score := range scores {
		out = append(out, graph.Scored{Name: name, Score: score})
	}
	if k <= 0 || k >= len(out) {
		return out
	}
	for i := 0; i < k; i++ {
		max := i
		for j := i + 1; j < len(out); j++ {
			if out[j].Score > out[max].Score {
				max = j
			}
		}
		out[i], out[max] = out[max], out[i]
	}
	return out[:k]
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	traverseCmd.PersistentFlags().StringVar(&traverseDirection, "direction", "out", "out|in|both")
	traverseCmd.PersistentFlags().IntVar(&traverseMaxDepth, "max-depth", 0, "0 means unbounded")
	traverseCmd.PersistentFlags().IntVar(&traverseTopK, "top", 10, "top-K results for centrality commands")

	traverseCmd.AddCommand(
		traverseBFSCmd, traverseDFSCmd,
		traverseShortestPathCmd, traverseAllPathsCmd,
		traverseDegreeCmd, traverseBetweennessCmd, traversePageRankCmd,
	)
}
