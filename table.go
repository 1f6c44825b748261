package locgene

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/genomekit/locgene/dna"
)

// MakeGeneTable renders annotations as a tab separated table with one
// row per location: the semicolon-joined within-gene columns followed
// by one block of columns per closest-gene slot.
func MakeGeneTable(annotations []*GeneAnnotation, tssRegion *dna.TSSRegion) (string, error) {
	if len(annotations) == 0 {
		return "", fmt.Errorf("no annotations to tabulate")
	}

	var buffer bytes.Buffer

	wtr := csv.NewWriter(&buffer)
	wtr.Comma = '\t'

	closestN := len(annotations[0].ClosestGenes)

	headers := make([]string, 0, 5+4*closestN)

	headers = append(headers,
		"Location",
		"Gene Id",
		"Gene Symbol",
		fmt.Sprintf("Relative To Gene (prom=-%d/+%dkb)",
			tssRegion.Offset5P()/1000,
			tssRegion.Offset3P()/1000),
		"TSS Distance")

	for i := 1; i <= closestN; i++ {
		headers = append(headers,
			fmt.Sprintf("#%d Closest Id", i),
			fmt.Sprintf("#%d Closest Gene Symbol", i),
			fmt.Sprintf("#%d Relative To Closest Gene (prom=-%d/+%dkb)",
				i,
				tssRegion.Offset5P()/1000,
				tssRegion.Offset3P()/1000),
			fmt.Sprintf("#%d Closest TSS Distance", i))
	}

	if err := wtr.Write(headers); err != nil {
		return "", err
	}

	for _, annotation := range annotations {
		row := make([]string, 0, len(headers))

		row = append(row,
			annotation.Location.String(),
			strings.Join(annotation.GeneIds, FeatureSeparator),
			strings.Join(annotation.GeneSymbols, FeatureSeparator),
			strings.Join(annotation.PromLabels, FeatureSeparator),
			strings.Join(annotation.TssDists, FeatureSeparator))

		for _, closestGene := range annotation.ClosestGenes {
			row = append(row,
				closestGene.Feature.GeneId,
				closestGene.Feature.GeneSymbol,
				closestGene.PromLabel,
				strconv.Itoa(closestGene.TssDist))
		}

		// pad short rows so every row has the full closest-gene block
		for len(row) < len(headers) {
			row = append(row, Na)
		}

		if err := wtr.Write(row); err != nil {
			return "", err
		}
	}

	wtr.Flush()

	if err := wtr.Error(); err != nil {
		return "", err
	}

	return buffer.String(), nil
}
