package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mipy/internal/bot"
	"mipy/internal/console"
	"mipy/internal/constants"
	"mipy/internal/router"
)

var testRouterCmd = &cobra.Command{
	Use:   "test-router",
	Short: "Open and close a session to check the router settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		s, err := provider.Router()
		if err != nil {
			return fmt.Errorf("%s", bot.RenderError(err))
		}
		console.PrintHint(fmt.Sprintf("Connecting to %s ...", s.Address()))
		if err := newService().Ping(ctx); err != nil {
			console.PrintFail(fmt.Sprintf("%s (%s)", bot.RenderError(err), router.KindOf(err)))
			return err
		}
		console.PrintOK("Connected and logged in as " + s.Username)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the router's system resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		res, err := newService().Status(ctx)
		if err != nil {
			return fmt.Errorf("%s", bot.RenderError(err))
		}
		s, _ := provider.Settings()
		fmt.Fprintln(cmd.OutOrStdout(), bot.RenderStatus(s.RouterHost, res))
		return nil
	},
}

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent hotspot users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		records, err := newService().Recent(ctx, listLimit)
		if err != nil {
			return fmt.Errorf("%s", bot.RenderError(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), bot.RenderList(records))
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <username>",
	Short: "Show a voucher and its live session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		d, err := newService().Detail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("%s", bot.RenderError(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), bot.RenderDetail(d))
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", constants.RecentVoucherLimit, "number of users to show")
	rootCmd.AddCommand(testRouterCmd, statusCmd, listCmd, detailCmd)
}
