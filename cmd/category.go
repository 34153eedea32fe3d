package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adigiz/leadgen/internal/model"
)

var (
	categoryName string
	categoryTerm string
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage search categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a search category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		c := &model.Category{Name: categoryName, SearchTerm: categoryTerm}
		if err := st.CreateCategory(ctx, c); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), c.ID)
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryName, "name", "", "display name (required)")
	categoryAddCmd.Flags().StringVar(&categoryTerm, "term", "", "search term (required)")
	_ = categoryAddCmd.MarkFlagRequired("name")
	_ = categoryAddCmd.MarkFlagRequired("term")
	categoryCmd.AddCommand(categoryAddCmd)
	rootCmd.AddCommand(categoryCmd)
}
