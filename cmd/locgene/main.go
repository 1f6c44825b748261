// Package main provides the locgene command-line tool.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genomekit/locgene/dna"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "locgene",
		Short:   "Annotate genomic locations with overlapping and closest genes",
		Version: version,
		Example: `  locgene annotate --assembly grch38 chr3:187745448-187745468
  locgene annotate --assembly grch38 --input peaks.txt -o peaks.annotated.tsv
  locgene serve --addr :8080`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().String("db-dir", "data/genes", "directory holding per-assembly gene databases")

	viper.SetDefault("db-dir", "data/genes")
	viper.SetConfigName(".locgene")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.AddConfigPath(".")

	// a missing config file is fine, flags and defaults cover everything
	_ = viper.ReadInConfig()

	_ = viper.BindPFlag("db-dir", cmd.PersistentFlags().Lookup("db-dir"))

	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGenomesCmd())

	return cmd
}

// parseTSSRegionFlag parses "5p,3p" offsets, e.g. "2000,1000".
func parseTSSRegionFlag(text string) (*dna.TSSRegion, error) {
	tokens := strings.Split(text, ",")

	if len(tokens) != 2 {
		return nil, fmt.Errorf("promoter must be of the form 5p,3p e.g. 2000,1000")
	}

	offset5p, err := strconv.Atoi(strings.TrimSpace(tokens[0]))

	if err != nil {
		return nil, fmt.Errorf("%s is not a valid 5p offset", tokens[0])
	}

	offset3p, err := strconv.Atoi(strings.TrimSpace(tokens[1]))

	if err != nil {
		return nil, fmt.Errorf("%s is not a valid 3p offset", tokens[1])
	}

	return dna.NewTSSRegion(offset5p, offset3p)
}
