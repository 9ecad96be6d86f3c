package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "deliveryfoods",
	Short: "Order lifecycle and real-time coordination for food delivery",
	Long: `deliveryfoods runs the order, chat, courier presence and earnings services
behind a JSON API with server-sent events, plus the tooling to migrate, seed
and export its data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./deliveryfoods.yaml)")
}

// loadConfig binds the command's flags over file and environment values.
func loadConfig(cmd *cobra.Command) (*models.Config, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := models.LoadConfig(v, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
