// Package locgene annotates genomic locations with the gene models they
// overlap or lie near: promoter/exonic/intronic classification against a
// configurable TSS window, per-gene aggregation of transcript hits, and
// the N closest genes by TSS distance.
package locgene

import (
	"fmt"
	"slices"

	"github.com/genomekit/locgene/dna"
)

type (
	// A GenomicFeature is one gene, transcript, or exon row from a gene
	// database. TssDist is only populated by closest-gene queries, where
	// it is the signed distance from the query midpoint to the feature's
	// stranded start.
	GenomicFeature struct {
		Chr        string `json:"chr"`
		Strand     string `json:"strand"`
		GeneId     string `json:"geneId"`
		GeneSymbol string `json:"geneSymbol"`
		Id         int    `json:"-"`
		Start      int    `json:"start"`
		End        int    `json:"end"`
		TssDist    int    `json:"tssDist"`
	}

	GenomicFeatures struct {
		Location *dna.Location     `json:"location"`
		Level    Level             `json:"level"`
		Features []*GenomicFeature `json:"features"`
	}

	GeneDBInfo struct {
		Name    string `json:"name"`
		Genome  string `json:"genome"`
		Version string `json:"version"`
	}

	// A GeneDB answers range and nearest-neighbor queries over an indexed
	// store of gene models. The annotation engine consumes this interface
	// and never builds or maintains the index itself.
	GeneDB interface {
		// WithinGenes returns features of the given level overlapping the
		// location.
		WithinGenes(location *dna.Location, level Level) ([]*GenomicFeature, error)

		// WithinGenesAndPromoter returns features of the given level whose
		// extent, padded by pad bases on each side, overlaps the location.
		WithinGenesAndPromoter(location *dna.Location, level Level, pad int) ([]*GenomicFeature, error)

		// InExon returns the exons of geneId overlapping the location.
		InExon(location *dna.Location, geneId string) ([]*GenomicFeature, error)

		// ClosestGenes returns the n features of the given level nearest
		// the location midpoint, ascending by absolute TSS distance, each
		// with TssDist populated.
		ClosestGenes(location *dna.Location, n int, level Level) ([]*GenomicFeature, error)

		GeneDBInfo() (*GeneDBInfo, error)

		Close() error
	}
)

// Level selects the feature granularity of a query.
type Level int

const (
	GeneLevel       Level = 1
	TranscriptLevel Level = 2
	ExonLevel       Level = 3
)

func ParseLevel(level string) Level {
	switch level {
	case "t", "tran", "transcript", "2":
		return TranscriptLevel
	case "e", "ex", "exon", "3":
		return ExonLevel
	default:
		return GeneLevel
	}
}

func (level Level) String() string {
	switch level {
	case TranscriptLevel:
		return "transcript"
	case ExonLevel:
		return "exon"
	default:
		return "gene"
	}
}

// TSS returns the transcription start site: start for + strand
// features, end for - strand. Malformed strands are treated as +.
func (feature *GenomicFeature) TSS() int {
	if feature.Strand == "-" {
		return feature.End
	}

	return feature.Start
}

func (feature *GenomicFeature) ToLocation() *dna.Location {
	return &dna.Location{Chr: feature.Chr, Start: feature.Start, End: feature.End}
}

func (feature *GenomicFeature) String() string {
	return fmt.Sprintf("%s:%d-%d:%s", feature.Chr, feature.Start, feature.End, feature.Strand)
}

// SortFeaturesByPos sorts features in place by chr, start, end.
func SortFeaturesByPos(features []*GenomicFeature) {
	slices.SortFunc(features, func(a, b *GenomicFeature) int {
		ci := dna.ChromToInt(a.Chr)
		cj := dna.ChromToInt(b.Chr)

		// on different chrs so sort by chr
		if ci != cj {
			return ci - cj
		}

		// same chr so sort by position
		if a.Start != b.Start {
			return a.Start - b.Start
		}

		// same start so sort by end
		return a.End - b.End
	})
}
