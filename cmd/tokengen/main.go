package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ariefcatur/gametrust/internal/auth"
	"github.com/ariefcatur/gametrust/internal/config"
	"github.com/spf13/cobra"
)

type mintFlags struct {
	sub  string
	role string
	ttl  time.Duration
}

var mintOpts mintFlags

// rootCmd mints a signed back-office token for local use.
var rootCmd = &cobra.Command{
	Use:           "tokengen",
	Short:         "Mint back-office tokens",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mintOpts.role != auth.RoleAdmin && mintOpts.role != auth.RoleModerator {
			return fmt.Errorf("unknown role %q", mintOpts.role)
		}
		tok, err := issuer().NewToken(mintOpts.sub, mintOpts.role, mintOpts.ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect TOKEN",
	Short: "Verify a token and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		claims, err := issuer().Parse(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(claims)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&mintOpts.sub, "sub", "s", "", "actor name written to the token subject")
	rootCmd.Flags().StringVarP(&mintOpts.role, "role", "r", auth.RoleModerator, "admin or moderator")
	rootCmd.Flags().DurationVar(&mintOpts.ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = rootCmd.MarkFlagRequired("sub")

	rootCmd.AddCommand(inspectCmd)
}

func issuer() *auth.Issuer {
	return auth.NewIssuer(config.MustLoad().JWTSecret)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
