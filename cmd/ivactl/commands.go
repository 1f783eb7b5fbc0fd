package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ivagate/internal/access"
	"ivagate/internal/wallet"
)

func newTierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tier <balance>",
		Short: "Show the access tier and avatar mood for a balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := access.ParseBalance(args[0])
			if err != nil {
				return err
			}
			_, engine, err := loadEngine()
			if err != nil {
				return err
			}
			policy := engine.Policy()
			fmt.Fprintf(cmd.OutOrStdout(), "balance=%g tier=%s can_chat=%v mood=%s\n",
				b, policy.Tier(b), policy.CanChat(b), engine.Ladder().Mood(b))
			return nil
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	var balance float64

	cmd := &cobra.Command{
		Use:   "evaluate [text...]",
		Short: "Evaluate a chat message as it would be on arrival",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := loadEngine()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), engine.Evaluate(strings.Join(args, " "), access.Normalize(balance)))
		},
	}
	cmd.Flags().Float64VarP(&balance, "balance", "b", 0, "wallet balance")
	return cmd
}

func newIdleCmd() *cobra.Command {
	var balance float64

	cmd := &cobra.Command{
		Use:   "idle",
		Short: "Draw an idle animation cue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := loadEngine()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), engine.Idle(access.Normalize(balance)))
		},
	}
	cmd.Flags().Float64VarP(&balance, "balance", "b", 0, "wallet balance")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <reply...>",
		Short: "Derive the avatar cue for a backend reply such as \"[happy]Finally\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := loadEngine()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), engine.AnalyzeReply(strings.Join(args, " ")))
		},
	}
}

func newWatchCmd() *cobra.Command {
	var adapter string

	cmd := &cobra.Command{
		Use:   "watch [address]",
		Short: "Poll a wallet and print tier changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := loadEngine()
			if err != nil {
				return err
			}

			reg := cfg.WalletRegistry()
			if len(args) == 1 {
				adapter = "cli"
				reg.Register(wallet.NewWatchOnly(adapter, args[0]))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := wallet.New(reg, wallet.NewSolana(cfg.Wallet.RPCURL))
			if err := w.Connect(ctx, adapter); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := func(st wallet.State) {
				fmt.Fprintf(out, "%s balance=%.4f tier=%s mood=%s\n",
					st.PublicKey, st.Balance, engine.Policy().Tier(st.Balance), engine.Ladder().Mood(st.Balance))
			}
			report(w.Snapshot())
			w.Watch(ctx, cfg.Wallet.PollInterval, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&adapter, "adapter", "a", "", "configured wallet adapter name")
	return cmd
}
