package cmd

import (
	"fmt"

	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/practice"
	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Split the words of a category into levels of a fixed size",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		categoryID, _ := cmd.Flags().GetInt64("category")
		size, _ := cmd.Flags().GetInt("size")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := commandContext(cmd)
		categories := database.NewCategoryRepository(db)
		category, err := categories.GetCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if category == nil || category.UserID != userID {
			return fmt.Errorf("category %d not found for user %d", categoryID, userID)
		}

		levels := practice.NewLevelManager(database.NewWordRepository(db), categories)
		if err := levels.ReorganizeIntoLevels(ctx, categoryID, size); err != nil {
			return err
		}
		r, err := levels.CurrentAndMaxLevel(ctx, userID, categoryID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Category %q now has %d level(s) of up to %d words\n", category.Name, r.Max, size)
		return nil
	},
}

func init() {
	levelsCmd.Flags().Int64("user", 0, "Telegram user id owning the category")
	levelsCmd.Flags().Int64("category", 0, "Category id")
	levelsCmd.Flags().Int("size", 0, "Words per level")
	_ = levelsCmd.MarkFlagRequired("user")
	_ = levelsCmd.MarkFlagRequired("category")
	_ = levelsCmd.MarkFlagRequired("size")
}
