package locgene

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/genomekit/locgene/dna"
)

// The gene database is a single genes table holding gene, transcript,
// and exon rows distinguished by level. stranded_start is the TSS of
// the feature's parent gene: start for + strand rows, end for - strand.

const geneDBInfoSql = `SELECT id, genome, version FROM info`

const withinGeneSql = `SELECT id, chr, start, end, strand, gene_id, gene_symbol,
	stranded_start - :mid AS tss_dist
	FROM genes
 	WHERE level = :level AND chr = :chr AND (start <= :end AND end >= :start)
 	ORDER BY start ASC`

const withinGeneAndPromoterSql = `SELECT id, chr, start, end, strand, gene_id, gene_symbol,
	stranded_start - :mid AS tss_dist
	FROM genes
 	WHERE level = :level AND chr = :chr AND (start - :pad <= :end AND end + :pad >= :start)
 	ORDER BY start ASC`

const inExonSql = `SELECT id, chr, start, end, strand, gene_id, gene_symbol,
	stranded_start - :mid AS tss_dist
	FROM genes
 	WHERE level = 3 AND gene_id = :geneId AND chr = :chr AND (start <= :end AND end >= :start)
 	ORDER BY start ASC`

const closestGeneSql = `SELECT id, chr, start, end, strand, gene_id, gene_symbol,
	stranded_start - :mid AS tss_dist
	FROM genes
 	WHERE level = :level AND chr = :chr
 	ORDER BY ABS(stranded_start - :mid)
 	LIMIT :n`

// SqliteGeneDB is a read-only GeneDB backed by a SQLite gene database.
type SqliteGeneDB struct {
	db   *sql.DB
	file string
	name string
}

func NewSqliteGeneDB(name string, file string) (*SqliteGeneDB, error) {
	log.Debug().Msgf("opening gene database %s", file)

	db, err := sql.Open("sqlite3", "file:"+file+"?mode=ro")

	if err != nil {
		return nil, fmt.Errorf("opening gene database %s: %w", file, err)
	}

	return &SqliteGeneDB{name: name, file: file, db: db}, nil
}

func (genedb *SqliteGeneDB) Close() error {
	return genedb.db.Close()
}

func (genedb *SqliteGeneDB) GeneDBInfo() (*GeneDBInfo, error) {
	var id int
	var genome string
	var version string

	err := genedb.db.QueryRow(geneDBInfoSql).Scan(&id, &genome, &version)

	if err != nil {
		return nil, fmt.Errorf("gene database info query for %s: %w", genedb.name, err)
	}

	return &GeneDBInfo{Name: genedb.name, Genome: genome, Version: version}, nil
}

func (genedb *SqliteGeneDB) WithinGenes(location *dna.Location, level Level) ([]*GenomicFeature, error) {
	rows, err := genedb.db.Query(withinGeneSql,
		sql.Named("mid", location.Mid()),
		sql.Named("level", level),
		sql.Named("chr", location.Chr),
		sql.Named("start", location.Start),
		sql.Named("end", location.End))

	if err != nil {
		return nil, fmt.Errorf("within genes query for %s: %w", location, err)
	}

	return rowsToFeatures(rows)
}

func (genedb *SqliteGeneDB) WithinGenesAndPromoter(location *dna.Location, level Level, pad int) ([]*GenomicFeature, error) {
	rows, err := genedb.db.Query(withinGeneAndPromoterSql,
		sql.Named("mid", location.Mid()),
		sql.Named("level", level),
		sql.Named("chr", location.Chr),
		sql.Named("pad", pad),
		sql.Named("start", location.Start),
		sql.Named("end", location.End))

	if err != nil {
		return nil, fmt.Errorf("within genes and promoter query for %s: %w", location, err)
	}

	return rowsToFeatures(rows)
}

func (genedb *SqliteGeneDB) InExon(location *dna.Location, geneId string) ([]*GenomicFeature, error) {
	rows, err := genedb.db.Query(inExonSql,
		sql.Named("mid", location.Mid()),
		sql.Named("geneId", geneId),
		sql.Named("chr", location.Chr),
		sql.Named("start", location.Start),
		sql.Named("end", location.End))

	if err != nil {
		return nil, fmt.Errorf("in exon query for %s in %s: %w", geneId, location, err)
	}

	return rowsToFeatures(rows)
}

func (genedb *SqliteGeneDB) ClosestGenes(location *dna.Location, n int, level Level) ([]*GenomicFeature, error) {
	rows, err := genedb.db.Query(closestGeneSql,
		sql.Named("mid", location.Mid()),
		sql.Named("level", level),
		sql.Named("chr", location.Chr),
		sql.Named("n", n))

	if err != nil {
		return nil, fmt.Errorf("closest genes query for %s: %w", location, err)
	}

	return rowsToFeatures(rows)
}

func rowsToFeatures(rows *sql.Rows) ([]*GenomicFeature, error) {
	defer rows.Close()

	// 10 seems a reasonable guess for the number of features we might see,
	// just to reduce slice reallocation
	features := make([]*GenomicFeature, 0, 10)

	for rows.Next() {
		var feature GenomicFeature

		err := rows.Scan(&feature.Id,
			&feature.Chr,
			&feature.Start,
			&feature.End,
			&feature.Strand,
			&feature.GeneId,
			&feature.GeneSymbol,
			&feature.TssDist)

		if err != nil {
			return nil, fmt.Errorf("reading gene rows: %w", err)
		}

		features = append(features, &feature)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading gene rows: %w", err)
	}

	return features, nil
}
