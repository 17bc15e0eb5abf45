package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/report"
)

func (a *App) fetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "fetch <source>",
		Short:   "Fetch a source list and reconcile it against the chain",
		Example: "  tokenlists fetch coingecko\n  tokenlists fetch cmc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "fetch", func(ctx context.Context, log *zap.Logger) error {
				log.Info("Fetching source", zap.String("source", args[0]))
				summary, err := a.runner.Fetch(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderFetch(*summary))
				return nil
			})
		},
	}
}

func (a *App) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "generate <list> [major|minor|patch]",
		Short:   "Build lists/<list>.json from its source snapshot",
		Example: "  tokenlists generate pancakeswap-extended\n  tokenlists generate pancakeswap-top-100 minor",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "generate", func(ctx context.Context, _ *zap.Logger) error {
				summary, err := a.runner.Generate(ctx, args[0], bumpArg(args))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderList(*summary))
				return nil
			})
		},
	}
}

func (a *App) checksumCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum <list>",
		Short: "Rewrite snapshot addresses in EIP-55 checksum form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "checksum", func(ctx context.Context, log *zap.Logger) error {
				changed, err := a.runner.Checksum(ctx, args[0])
				if err != nil {
					return err
				}
				log.Info("Checksum finished", zap.String("list", args[0]), zap.Int("changed", changed))
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d addresses checksummed\n", args[0], changed)
				return nil
			})
		},
	}
}

func (a *App) makelistCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "makelist <list> [major|minor|patch]",
		Short: "Checksum, generate and validate a list",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "makelist", func(ctx context.Context, _ *zap.Logger) error {
				summary, err := a.runner.MakeList(ctx, args[0], bumpArg(args))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderList(*summary))
				return nil
			})
		},
	}
}

func (a *App) ciCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ci-check",
		Short: "Verify that every published list matches its source snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "ci-check", func(ctx context.Context, _ *zap.Logger) error {
				rows, err := a.runner.CICheck(ctx)
				if rows != nil {
					fmt.Fprintln(cmd.OutOrStdout(), report.RenderDrift(rows))
				}
				return err
			})
		},
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tokenlists %s\n", a.version)
		},
	}
}

func bumpArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}
