package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/blueprint"
	"github.com/meikuraledutech/pipeline/client"
	"github.com/meikuraledutech/pipeline/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "pipelinectl",
		Short: "Build pipeline graphs from blueprints and validate them",
		Long: `pipelinectl replays a YAML blueprint as editor operations (place node,
edit content, connect ports) and then inspects or submits the result.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every graph mutation")

	root.AddCommand(portsCmd())
	root.AddCommand(dotCmd())
	root.AddCommand(payloadCmd())
	root.AddCommand(submitCmd())
	return root
}

// loadStore builds a fresh store from the blueprint at path ("-" is stdin).
func loadStore(cmd *cobra.Command, path string) (*pipeline.Store, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open blueprint: %w", err)
		}
		defer f.Close()
		r = f
	}

	bp, err := blueprint.Load(r)
	if err != nil {
		return nil, err
	}
	s := pipeline.NewStore(pipeline.WithLogger(slog.Default()))
	if _, err := bp.Build(s); err != nil {
		return nil, err
	}
	return s, nil
}

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports <blueprint.yaml>",
		Short: "List every node's derived ports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, n := range s.Snapshot().Nodes {
				fmt.Fprintf(w, "%s (%s)\n", n.ID, n.Type)
				for _, p := range pipeline.DerivePorts(n) {
					fmt.Fprintf(w, "  %-6s %-24s %-12s @%.2f\n", p.Direction, p.ID, p.Label, p.Offset)
				}
			}
			return nil
		},
	}
}

func dotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dot <blueprint.yaml>",
		Short: "Render the graph as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := blueprint.DOT(s.Snapshot())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func payloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payload <blueprint.yaml>",
		Short: "Print the JSON body that submit would send",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(cmd, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pipeline.Serialize(s.Snapshot()))
		},
	}
}

func submitCmd() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "submit <blueprint.yaml>",
		Short: "Submit the graph to the validation service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore(cmd, args[0])
			if err != nil {
				return err
			}

			c := client.New(endpoint, client.WithLogger(slog.Default()))
			sess := session.New(s, client.NewSubmitter(c))
			out, err := sess.Submit(cmd.Context())
			var se *client.SubmissionError
			if errors.As(err, &se) && se.Kind == client.KindNetwork {
				return fmt.Errorf("%w\nmake sure the validation service is running at %s", err, endpointOrDefault(endpoint))
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Verdict())
			fmt.Fprintln(w)
			fmt.Fprintln(w, out.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", os.Getenv("PIPELINE_ENDPOINT"),
		"validation service base URL (default "+client.DefaultBaseURL+", env PIPELINE_ENDPOINT)")
	return cmd
}

func endpointOrDefault(e string) string {
	if e == "" {
		return client.DefaultBaseURL
	}
	return e
}
