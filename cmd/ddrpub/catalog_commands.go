package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ddrpub/internal/registry"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the remote DDR catalogs",
	}

	catalogCmd.AddCommand(newCatalogThemesCommand(ctx))
	catalogCmd.AddCommand(newCatalogDepartmentsCommand(ctx))
	catalogCmd.AddCommand(newCatalogEmailCommand(ctx))

	return catalogCmd
}

func newCatalogThemesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the Clip-Zip-Ship collection themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			raw, err := client.FetchThemes(cmd.Context())
			if err != nil {
				return err
			}
			reg := registry.New()
			if err := reg.AddThemes(raw); err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, theme := range reg.Themes() {
				rows = append(rows, []string{theme.UUID, theme.TitleEN, theme.TitleFR})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"UUID", "Title (EN)", "Titre (FR)"}, rows))
			return nil
		},
	}
}

func newCatalogDepartmentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List the departments registered with the DDR service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			raw, err := client.FetchDepartments(cmd.Context())
			if err != nil {
				return err
			}
			reg := registry.New()
			if err := reg.AddDepartments(raw); err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, department := range reg.Departments() {
				rows = append(rows, []string{department})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Department"}, rows))
			return nil
		},
	}
}

func newCatalogEmailCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "email",
		Short: "Show the publisher email registered for the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			raw, err := client.FetchEmail(cmd.Context())
			if err != nil {
				return err
			}
			reg := registry.New()
			if err := reg.AddEmail(raw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reg.Email())
			return nil
		},
	}
}
