package locgene

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/genomekit/locgene/dna"
)

const (
	Na string = "n/a"

	PromoterLabel   string = "promoter"
	ExonicLabel     string = "exonic"
	IntronicLabel   string = "intronic"
	IntergenicLabel string = "intergenic"

	LabelSeparator   string = ","
	FeatureSeparator string = ";"
)

type (
	// A ClosestGene is one of the n genes nearest a location, with its
	// own classification relative to that location.
	ClosestGene struct {
		Feature   *GenomicFeature `json:"feature"`
		PromLabel string          `json:"promLabel"`
		TssDist   int             `json:"tssDist"`
	}

	// A GeneAnnotation describes one location. The four within lists are
	// co-indexed and always the same length: when no gene overlaps the
	// promoter-extended search window each holds the single sentinel
	// value "n/a", so callers must not read the length as a match count.
	GeneAnnotation struct {
		Location     *dna.Location  `json:"location"`
		GeneIds      []string       `json:"geneIds"`
		GeneSymbols  []string       `json:"geneSymbols"`
		PromLabels   []string       `json:"promLabels"`
		TssDists     []string       `json:"tssDists"`
		ClosestGenes []*ClosestGene `json:"closestGenes"`
	}

	// classification of one transcript-level feature against a location.
	classification struct {
		isPromoter bool
		isExon     bool
		isIntronic bool
		d          int
	}

	// geneProm accumulates the transcript-level classifications of one
	// gene within a single Annotate call. Flags OR-combine; d keeps the
	// value from whichever transcript has the smallest |d|.
	geneProm struct {
		feature    *GenomicFeature
		isPromoter bool
		isExon     bool
		isIntronic bool
		d          int
		absD       int
	}

	// An AnnotateDb classifies locations against a gene database. It is
	// stateless between calls and safe for concurrent use.
	AnnotateDb struct {
		GeneDb    GeneDB
		TSSRegion *dna.TSSRegion
		ClosestN  int
	}
)

func NewAnnotateDb(genedb GeneDB, tssRegion *dna.TSSRegion, closestN int) *AnnotateDb {
	return &AnnotateDb{
		GeneDb:    genedb,
		TSSRegion: tssRegion,
		ClosestN:  closestN,
	}
}

// Annotate returns the genes the location overlaps, or whose promoter
// window it overlaps, collapsed to one entry per gene and ordered by
// ascending absolute TSS distance, plus the ClosestN nearest genes
// classified independently of overlap.
func (annotateDb *AnnotateDb) Annotate(location *dna.Location) (*GeneAnnotation, error) {
	// extend the search by the larger offset so promoter-only hits on
	// either strand are not missed
	genesWithin, err := annotateDb.GeneDb.WithinGenesAndPromoter(
		location,
		TranscriptLevel,
		annotateDb.TSSRegion.Pad())

	if err != nil {
		return nil, fmt.Errorf("annotating %s: %w", location, err)
	}

	// fold transcript-level hits into one accumulator per gene id
	promoterMap := make(map[string]*geneProm)

	for _, gene := range genesWithin {
		c, err := annotateDb.classify(location, gene)

		if err != nil {
			return nil, fmt.Errorf("annotating %s: %w", location, err)
		}

		prom, ok := promoterMap[gene.GeneId]

		if ok {
			prom.isPromoter = prom.isPromoter || c.isPromoter
			prom.isExon = prom.isExon || c.isExon
			prom.isIntronic = prom.isIntronic || c.isIntronic

			// record the transcript closest to our site, keeping the
			// first seen value on ties
			if absInt(c.d) < prom.absD {
				prom.feature = gene
				prom.d = c.d
				prom.absD = absInt(c.d)
			}
		} else {
			promoterMap[gene.GeneId] = &geneProm{
				feature:    gene,
				isPromoter: c.isPromoter,
				isExon:     c.isExon,
				isIntronic: c.isIntronic,
				d:          c.d,
				absD:       absInt(c.d),
			}
		}
	}

	ids := orderGeneIds(promoterMap)

	geneIds := make([]string, 0, max(len(ids), 1))
	geneSymbols := make([]string, 0, max(len(ids), 1))
	promLabels := make([]string, 0, max(len(ids), 1))
	tssDists := make([]string, 0, max(len(ids), 1))

	for _, id := range ids {
		prom := promoterMap[id]

		geneIds = append(geneIds, id)
		geneSymbols = append(geneSymbols, prom.feature.GeneSymbol)
		promLabels = append(promLabels, MakePromLabel(prom.isPromoter, prom.isExon, prom.isIntronic))
		tssDists = append(tssDists, strconv.Itoa(prom.d))
	}

	if len(ids) == 0 {
		geneIds = append(geneIds, Na)
		geneSymbols = append(geneSymbols, Na)
		promLabels = append(promLabels, Na)
		tssDists = append(tssDists, Na)
	}

	closestFeatures, err := annotateDb.GeneDb.ClosestGenes(location, annotateDb.ClosestN, GeneLevel)

	if err != nil {
		return nil, fmt.Errorf("annotating %s: %w", location, err)
	}

	// keep the distance order the store returned
	closestGenes := make([]*ClosestGene, 0, len(closestFeatures))

	for _, feature := range closestFeatures {
		label, err := annotateDb.ClassifyFeature(location, feature)

		if err != nil {
			return nil, fmt.Errorf("annotating %s: %w", location, err)
		}

		closestGenes = append(closestGenes, &ClosestGene{
			Feature:   feature,
			PromLabel: label,
			TssDist:   feature.TssDist,
		})
	}

	return &GeneAnnotation{
		Location:     location,
		GeneIds:      geneIds,
		GeneSymbols:  geneSymbols,
		PromLabels:   promLabels,
		TssDists:     tssDists,
		ClosestGenes: closestGenes,
	}, nil
}

// classify computes the promoter/exon/intron flags and the signed TSS
// distance of a single feature. The promoter window is strand-relative:
// [start-5p, start+3p] for + strand, [end-3p, end+5p] for - strand, with
// offsets taken as magnitudes. The exon membership lookup is the only
// I/O performed.
func (annotateDb *AnnotateDb) classify(location *dna.Location, feature *GenomicFeature) (*classification, error) {
	mid := location.Mid()
	region := annotateDb.TSSRegion

	var isPromoter bool

	if feature.Strand == "-" {
		isPromoter = mid >= feature.End-region.Offset3P() && mid <= feature.End+region.Offset5P()
	} else {
		isPromoter = mid >= feature.Start-region.Offset5P() && mid <= feature.Start+region.Offset3P()
	}

	exons, err := annotateDb.GeneDb.InExon(location, feature.GeneId)

	if err != nil {
		return nil, err
	}

	return &classification{
		isPromoter: isPromoter,
		isExon:     len(exons) > 0,
		isIntronic: mid >= feature.Start && mid <= feature.End,
		d:          feature.TSS() - mid,
	}, nil
}

// ClassifyFeature labels a feature relative to a location. Features
// whose searched window, the gene body unioned with the promoter
// window, misses the location entirely are labeled intergenic.
func (annotateDb *AnnotateDb) ClassifyFeature(location *dna.Location, feature *GenomicFeature) (string, error) {
	region := annotateDb.TSSRegion

	var s int
	var e int

	if feature.Strand == "-" {
		s = min(feature.Start, feature.End-region.Offset3P())
		e = feature.End + region.Offset5P()
	} else {
		s = feature.Start - region.Offset5P()
		e = max(feature.End, feature.Start+region.Offset3P())
	}

	if location.Start > e || location.End < s {
		return IntergenicLabel, nil
	}

	c, err := annotateDb.classify(location, feature)

	if err != nil {
		return "", err
	}

	return MakePromLabel(c.isPromoter, c.isExon, c.isIntronic), nil
}

// orderGeneIds returns the gene ids sorted by ascending absolute TSS
// distance, ties broken by id, so output is deterministic regardless of
// the order the store returned rows in.
func orderGeneIds(promoterMap map[string]*geneProm) []string {
	distMap := make(map[int][]string)

	for id, prom := range promoterMap {
		distMap[prom.absD] = append(distMap[prom.absD], id)
	}

	distances := make([]int, 0, len(distMap))

	for d := range distMap {
		distances = append(distances, d)
	}

	slices.Sort(distances)

	ids := make([]string, 0, len(promoterMap))

	for _, d := range distances {
		dids := distMap[d]

		slices.Sort(dids)

		ids = append(ids, dids...)
	}

	return ids
}

// MakePromLabel summarizes classification flags as a label. Promoter
// status combines with exonic or intronic; exonic wins over intronic.
// No flags set yields the empty label.
func MakePromLabel(isPromoter bool, isExon bool, isIntronic bool) string {
	labels := make([]string, 0, 2)

	if isPromoter {
		labels = append(labels, PromoterLabel)
	}

	if isExon {
		labels = append(labels, ExonicLabel)
	} else if isIntronic {
		labels = append(labels, IntronicLabel)
	}

	return strings.Join(labels, LabelSeparator)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
