package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func exemptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exempt",
		Short: "Manage stored exemptions",
	}

	var (
		reason  string
		expires string
	)
	add := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Exempt symbols matching a glob such as Game.Legacy* or Game.Player::Debug*",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var until time.Time
			if expires != "" {
				t, err := time.Parse(time.DateOnly, expires)
				if err != nil {
					return fmt.Errorf("--expires: %w", err)
				}
				until = t.UTC()
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			user := currentUser()
			id, err := db.CreateExemption(args[0], reason, user, until)
			if err != nil {
				return err
			}
			if err := db.LogAudit(user, "exemption.create", strconv.FormatInt(id, 10),
				map[string]any{"pattern": args[0], "justification": reason}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exemption %d created\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&reason, "reason", "", "Justification (required)")
	add.Flags().StringVar(&expires, "expires", "", "Expiry date YYYY-MM-DD (default: never)")

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List exemptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := db.ListExemptions(!all)
			if err != nil {
				return err
			}
			now := time.Now()
			w := cmd.OutOrStdout()
			for _, e := range items {
				state := "active"
				if !e.Active(now) {
					state = "inactive"
				}
				exp := "never"
				if e.ExpiresAt != nil {
					exp = e.ExpiresAt.Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%4d  %-8s %-32s expires=%s by=%s  %s\n", e.ID, state, e.Pattern, exp, e.CreatedBy, e.Justification)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "Include revoked and expired exemptions")

	revoke := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an exemption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RevokeExemption(id); err != nil {
				return fmt.Errorf("revoke %d: %w", id, err)
			}
			if err := db.LogAudit(currentUser(), "exemption.revoke", args[0], nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exemption %d revoked\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, revoke)
	return cmd
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
