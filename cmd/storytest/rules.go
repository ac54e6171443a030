package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/storytest/internal/rules"
)

func rulesCmd() *cobra.Command {
	var packs []string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List registered rules and whether the current config runs them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Rules.Packs = append(cfg.Rules.Packs, packs...)
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			active := map[string]bool{}
			for _, r := range reg.Active(cfg.RuleSettings()) {
				active[r.ID] = true
			}
			w := cmd.OutOrStdout()
			for _, r := range reg.List() {
				state := "off"
				if active[r.ID] {
					state = "on"
				}
				stage := "symbol"
				if r.Stage == rules.StageSet {
					stage = "set"
				}
				fmt.Fprintf(w, "%-26s %-3s %-6s %-6s %s\n", r.ID, state, r.DefaultSeverity, stage, r.Summary)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&packs, "rules-pack", nil, "Extra YAML rule packs to load")
	return cmd
}
