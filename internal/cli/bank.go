package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	pgstore "quizmaster/internal/infra/postgres"
)

// NewImportCmd merges a JSON question file into the Postgres bank.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <questions.json>",
		Short: "Import questions from a JSON array into the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			bank, cleanup, err := openBank(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			merged, err := bank.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d question(s)\n", merged)
			return nil
		},
	}
}

// NewExportCmd writes the whole bank as a JSON array to stdout or a file.
func NewExportCmd(configPath *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the question bank as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, cleanup, err := openBank(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := bank.Export(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func openBank(configPath string) (*app.BankService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.NewBankService(pgstore.NewQuestionBank(db)), func() { _ = db.Close() }, nil
}
