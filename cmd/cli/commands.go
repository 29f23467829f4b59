package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/auth"
	"github.com/iho/cashledger/internal/usecase"
)

type globalOptions struct {
	baseURL        string
	token          string
	idempotencyKey string
	timeout        time.Duration
}

func (o *globalOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.idempotencyKey, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "cashledger-cli",
		Short:         "cashledger CLI tool",
		Long:          `A command line interface for interacting with the cashledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the cashledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (see the token command)")
	rootCmd.PersistentFlags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency-Key sent with POST requests")

	rootCmd.AddCommand(
		cashInCmd(opts),
		withdrawCmd(opts),
		balanceCmd(opts),
		operationsCmd(opts),
		transferCmd(opts),
		transfersCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func cashInCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cash-in ACCOUNT AMOUNT",
		Short: "Add money to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := opts.client().cashIn(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), op)
		},
	}
}

func withdrawCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw ACCOUNT AMOUNT",
		Short: "Take money out of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := opts.client().withdraw(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), op)
		},
	}
}

func balanceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance ACCOUNT",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.client().balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), b.Balance.String())
			return err
		},
	}
}

func operationsCmd(opts *globalOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "operations ACCOUNT",
		Short: "List the operations of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := opts.client().operations(cmd.Context(), args[0], limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ops)
		},
	}

	addPageFlags(cmd, &limit, &offset)
	return cmd
}

func transferCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer FROM TO AMOUNT",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.client().transfer(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

func transfersCmd(opts *globalOptions) *cobra.Command {
	transfers := &cobra.Command{
		Use:   "transfers",
		Short: "Inspect and delete transfers",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List transfers in ascending id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := opts.client().listTransfers(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ts)
		},
	}
	addPageFlags(list, &limit, &offset)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTransferID(args[0])
			if err != nil {
				return err
			}
			t, err := opts.client().getTransfer(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transfer and both of its operations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTransferID(args[0])
			if err != nil {
				return err
			}
			if err := opts.client().deleteTransfer(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "transfer %d deleted\n", id)
			return err
		},
	}

	transfers.AddCommand(list, get, del)
	return transfers
}

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT signed with the server secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(subject, domain.Role(role))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT_SECRET of the server")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleViewer), "operator or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}

func addPageFlags(cmd *cobra.Command, limit, offset *int) {
	cmd.Flags().IntVar(limit, "limit", usecase.DefaultPageLimit, "Page size")
	cmd.Flags().IntVar(offset, "offset", 0, "Number of items to skip")
}

func parseTransferID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transfer id %q", raw)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
