package cmd

import (
	"fmt"
	"os"

	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the progress of a category to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		userID, _ := cmd.Flags().GetInt64("user")
		categoryID, _ := cmd.Flags().GetInt64("category")
		out, _ := cmd.Flags().GetString("out")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = cerr
			}
		}()

		exporter := export.NewExporter(database.NewWordRepository(db), database.NewCategoryRepository(db))
		if err := exporter.Export(commandContext(cmd), userID, categoryID, f); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported category %d to %s\n", categoryID, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().Int64("user", 0, "Telegram user id owning the category")
	exportCmd.Flags().Int64("category", 0, "Category id")
	exportCmd.Flags().String("out", "progress.xlsx", "Output file")
	_ = exportCmd.MarkFlagRequired("user")
	_ = exportCmd.MarkFlagRequired("category")
}
