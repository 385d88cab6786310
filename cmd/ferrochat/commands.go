package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/ferrochat"
	"github.com/ferro-labs/ferrochat/internal/version"
)

func newAskCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := a.client.SendChatMessage(a.ctx(cmd), strings.Join(args, " "), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				_, _ = fmt.Fprintln(out, reply)
				return nil
			}
			_, _ = fmt.Fprint(out, render(out, reply))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List known providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := a.client.GetAPIConfig(a.ctx(cmd)).SelectedProvider
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "  NAME\tBASE URL\tDEFAULT KEY")
			for _, p := range a.client.GetProviders() {
				mark := " "
				if p.Name == selected {
					mark = "*"
				}
				key := "missing"
				if p.APIKey != "" {
					key = "set"
				}
				_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, p.Name, p.BaseURL, key)
			}
			return tw.Flush()
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models a provider offers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			name := a.client.GetAPIConfig(ctx).SelectedProvider
			if len(args) == 1 {
				name = args[0]
			}

			var (
				list []ferrochat.ModelInfo
				err  error
			)
			if refresh {
				list, err = a.client.RefreshProviderModels(ctx, name)
			} else {
				list, err = a.client.GetProviderModels(ctx, name)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, m := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, m.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cache and discover again")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the selected provider and model",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.client.GetAPIConfig(a.ctx(cmd))
			if cfg.CustomAPIKey != "" {
				cfg.CustomAPIKey = maskKey(cfg.CustomAPIKey)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}

	var provider, model, key string
	var clearKey bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the selection; unspecified fields keep their value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := a.ctx(cmd)
			cfg := a.client.GetAPIConfig(ctx)
			if cmd.Flags().Changed("provider") {
				cfg.SelectedProvider = provider
			}
			if cmd.Flags().Changed("model") {
				cfg.SelectedModel = model
			}
			if cmd.Flags().Changed("api-key") {
				cfg.CustomAPIKey = key
			}
			if clearKey {
				cfg.CustomAPIKey = ""
			}
			if err := a.client.ValidateAPIConfig(cfg); err != nil {
				return fmt.Errorf("not saved: %w", err)
			}
			a.client.SetAPIConfig(ctx, cfg)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Using %s / %s\n", cfg.SelectedProvider, cfg.SelectedModel)
			return nil
		},
	}
	set.Flags().StringVar(&provider, "provider", "", "provider name")
	set.Flags().StringVar(&model, "model", "", "model id")
	set.Flags().StringVar(&key, "api-key", "", "custom API key overriding the provider default")
	set.Flags().BoolVar(&clearKey, "clear-api-key", false, "remove the custom API key")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.ResetAPIConfig(a.ctx(cmd)); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Selection reset to defaults")
			return nil
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Discard every cached model listing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.client.ClearModelCache(a.ctx(cmd))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Model cache cleared")
			return nil
		},
	})
	return cmd
}

func newRequestsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Show recent chat requests from the request log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.reqlog == nil {
				return fmt.Errorf("request log is not configured (set request_log in the config file)")
			}
			entries, err := a.reqlog.Recent(a.ctx(cmd), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIME\tOUTCOME\tPROVIDER\tMODEL\tMS\tTOKENS\tERROR")
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					e.Outcome, e.Provider, e.Model, e.DurationMs, e.TotalTokens, e.ErrorType)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ferrochat %s\n", version.String())
		},
	}
}

func maskKey(k string) string {
	if len(k) <= 8 {
		return "****"
	}
	return k[:4] + "..." + k[len(k)-4:]
}
