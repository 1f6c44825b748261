package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genomekit/locgene"
	"github.com/genomekit/locgene/dna"
)

func newAnnotateCmd() *cobra.Command {
	var (
		assembly   string
		inputFile  string
		outputFile string
		promoter   string
		closestN   int
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "annotate [locations...]",
		Short: "Annotate locations with overlapping and closest genes",
		Long: `Annotate genomic locations with the genes they overlap or lie near.

Locations are given as arguments (chr3:187745448-187745468) or read one
per line from --input (use '-' for stdin). Output is a tab separated
table with one row per location.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && inputFile == "" {
				return fmt.Errorf("no locations given: pass them as arguments or use --input")
			}

			locations, err := collectLocations(args, inputFile)

			if err != nil {
				return err
			}

			tssRegion, err := parseTSSRegionFlag(promoter)

			if err != nil {
				return err
			}

			file := filepath.Join(viper.GetString("db-dir"), fmt.Sprintf("%s.db", assembly))

			db, err := locgene.NewSqliteGeneDB(assembly, file)

			if err != nil {
				return err
			}

			defer db.Close()

			annotateDb := locgene.NewAnnotateDb(db, tssRegion, closestN)

			annotations, err := annotateAll(annotateDb, locations, workers)

			if err != nil {
				return err
			}

			table, err := locgene.MakeGeneTable(annotations, tssRegion)

			if err != nil {
				return err
			}

			return writeOutput(outputFile, table)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "grch38", "genome assembly, e.g. grch38, mm10")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "file of locations, one per line ('-' for stdin)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&promoter, "promoter", "2000,1000", "promoter window as 5p,3p offsets in bp")
	cmd.Flags().IntVar(&closestN, "closest", 10, "number of closest genes to report")
	cmd.Flags().IntVar(&workers, "workers", 0, "annotation workers (0 = number of CPUs)")

	return cmd
}

// annotateAll fans locations out over a worker pool and collects the
// annotations back in input order. A failed location is logged and
// skipped rather than aborting the batch.
func annotateAll(annotateDb *locgene.AnnotateDb, locations []*dna.Location, workers int) ([]*locgene.GeneAnnotation, error) {
	items := make(chan locgene.WorkItem, len(locations))

	for i, location := range locations {
		items <- locgene.WorkItem{Seq: i, Location: location}
	}

	close(items)

	results := annotateDb.ParallelAnnotate(items, workers)

	annotations := make([]*locgene.GeneAnnotation, 0, len(locations))

	err := locgene.OrderedCollect(results, func(r locgene.WorkResult) error {
		if r.Err != nil {
			log.Error().Msgf("skipping %s: %v", r.Location, r.Err)
			return nil
		}

		annotations = append(annotations, r.Annotation)

		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(annotations) == 0 {
		return nil, fmt.Errorf("no locations could be annotated")
	}

	return annotations, nil
}

func collectLocations(args []string, inputFile string) ([]*dna.Location, error) {
	locations := make([]*dna.Location, 0, len(args))

	for _, arg := range args {
		location, err := dna.ParseLocation(arg)

		if err != nil {
			return nil, err
		}

		locations = append(locations, location)
	}

	if inputFile != "" {
		var reader io.Reader

		if inputFile == "-" {
			reader = os.Stdin
		} else {
			f, err := os.Open(inputFile)

			if err != nil {
				return nil, err
			}

			defer f.Close()

			reader = f
		}

		scanner := bufio.NewScanner(reader)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			location, err := dna.ParseLocation(line)

			if err != nil {
				return nil, err
			}

			locations = append(locations, location)
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return locations, nil
}

func writeOutput(outputFile string, table string) error {
	if outputFile == "" {
		_, err := fmt.Print(table)
		return err
	}

	return os.WriteFile(outputFile, []byte(table), 0644)
}
