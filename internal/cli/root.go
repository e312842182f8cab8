package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ordinal",
	Short: "Ordinal keeps hand-ordered lists in order",
	Long: `Ordinal stores entities with ordered attribute lists, and groups with
ordered entry lists. Members are moved up and down their list by any number
of places; sort keys are kept sparse and respaced only when a move runs out
of room.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var (
	cfgFilePath string
)

const (
	ConfigFileName      = ".ordinal"
	ConfigFileExtension = ".yaml"
	EnvPrefix           = "ORDINAL"
)

func init() {
	homePath, err := homedir.Dir()
	if err != nil {
		log.Fatal(err)
	}

	cfgFilePath = filepath.Join(homePath, ConfigFileName+ConfigFileExtension)
	setDefaults(homePath)

	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFilePath, "config", cfgFilePath, "config file (default is $HOME/.ordinal.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("error executing root command: %s", err)
	}
}

func initConfig() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(cfgFilePath)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}
		fmt.Fprintf(os.Stderr, "error reading config file: %s\n", err)
	}
}
