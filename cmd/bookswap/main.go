package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errLoginRequired) && !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bookswap",
		Short:         "Terminal client for the BookSwap marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.bookswap/config.yaml)")

	// 各コマンドは実行時に依存関係を組み立てます
	var withApp wrapper = func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath, cmd.OutOrStdout(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, a, args)
		}
	}

	root.AddCommand(
		newLoginCmd(withApp),
		newRegisterCmd(withApp),
		newLogoutCmd(withApp),
		newWhoamiCmd(withApp),
		newNavCmd(withApp),
		newItemsCmd(withApp),
		newItemCmd(withApp),
		newMyItemsCmd(withApp),
		newSellCmd(withApp),
		newDeleteCmd(withApp),
		newCategoriesCmd(withApp),
		newAdminCmd(withApp),
	)
	return root
}

// wrapper は runner を cobra の RunE に変換します
type wrapper func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error
