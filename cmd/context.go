package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/request"
)

var (
	contextReq requestFlags
	contextTag string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the context tokens for a request",
	Long: `Resolve a request into context tokens, least specific first, after the
theme's context filter has run.

Examples:
  exmachina context --singular post --id 42
  exmachina context --archive --taxonomy category --term news
  exmachina context --front --singular page --id 2 --tag header`,
	Args: cobra.NoArgs,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextReq.register(contextCmd.Flags())
	contextCmd.Flags().StringVar(&contextTag, "tag", "", "Also print the hook names fired for this tag")
}

func runContext(cmd *cobra.Command, _ []string) error {
	req, err := contextReq.Request(cmd.Flags())
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		ctx, err := a.theme.Request(ctx, req)
		if err != nil {
			return fmt.Errorf("context filter: %w", err)
		}

		for _, tok := range request.TokensFrom(ctx) {
			fmt.Println(tok)
		}
		if contextTag != "" {
			fmt.Println()
			for _, name := range a.hooks.Names(ctx, contextTag) {
				fmt.Println(name)
			}
		}
		return nil
	})
}
