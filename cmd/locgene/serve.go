package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genomekit/locgene"
	"github.com/genomekit/locgene/routes"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the annotation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := locgene.NewGeneDBCache(viper.GetString("db-dir"))

			if err != nil {
				return err
			}

			defer cache.Close()

			r := gin.Default()

			routes.New(cache).Setup(r)

			log.Info().Msgf("listening on %s", addr)

			return r.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func newGenomesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genomes",
		Short: "List the gene databases available in the database directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := locgene.NewGeneDBCache(viper.GetString("db-dir"))

			if err != nil {
				return err
			}

			defer cache.Close()

			infos, err := cache.List()

			if err != nil {
				return err
			}

			for _, info := range infos {
				fmt.Printf("%s\t%s\t%s\n", info.Name, info.Genome, info.Version)
			}

			return nil
		},
	}
}
