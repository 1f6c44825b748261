package locgene_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomekit/locgene"
	"github.com/genomekit/locgene/dna"
)

const testGeneSchema = `
	CREATE TABLE info (id INTEGER PRIMARY KEY, genome TEXT, version TEXT);
	CREATE TABLE genes (
		id INTEGER PRIMARY KEY,
		chr TEXT,
		start INTEGER,
		end INTEGER,
		strand TEXT,
		gene_id TEXT,
		gene_symbol TEXT,
		level INTEGER,
		stranded_start INTEGER
	);
	CREATE INDEX genes_chr_level_idx ON genes (chr, level);
`

type testGeneRow struct {
	chr    string
	start  int
	end    int
	strand string
	geneId string
	symbol string
	level  int
}

func (r *testGeneRow) tss() int {
	if r.strand == "-" {
		return r.end
	}

	return r.start
}

// makeTestGeneFile writes a small gene database to file. The fixture
// is a + strand gene on chr3 with one transcript and two exons, plus a
// - strand neighbor upstream of it.
func makeTestGeneFile(t *testing.T, file string) {
	t.Helper()

	db, err := sql.Open("sqlite3", file)
	require.NoError(t, err)

	_, err = db.Exec(testGeneSchema)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO info (id, genome, version) VALUES (1, 'grch38', 'v1')`)
	require.NoError(t, err)

	rows := []testGeneRow{
		{"chr3", 187745450, 187750000, "+", "GENE1", "BCL6", 1},
		{"chr3", 187745450, 187750000, "+", "GENE1", "BCL6", 2},
		{"chr3", 187747000, 187747200, "+", "GENE1", "BCL6", 3},
		{"chr3", 187749800, 187750000, "+", "GENE1", "BCL6", 3},
		{"chr3", 187600000, 187700000, "-", "GENE2", "UPSTREAM", 1},
		{"chr3", 187600000, 187700000, "-", "GENE2", "UPSTREAM", 2},
	}

	for _, r := range rows {
		_, err = db.Exec(
			`INSERT INTO genes (chr, start, end, strand, gene_id, gene_symbol, level, stranded_start)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.chr, r.start, r.end, r.strand, r.geneId, r.symbol, r.level, r.tss())
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func newTestGeneDB(t *testing.T) *locgene.SqliteGeneDB {
	t.Helper()

	file := filepath.Join(t.TempDir(), "grch38.db")

	makeTestGeneFile(t, file)

	genedb, err := locgene.NewSqliteGeneDB("grch38", file)
	require.NoError(t, err)

	t.Cleanup(func() { genedb.Close() })

	return genedb
}

func TestSqliteGeneDBInfo(t *testing.T) {
	genedb := newTestGeneDB(t)

	info, err := genedb.GeneDBInfo()
	require.NoError(t, err)

	assert.Equal(t, "grch38", info.Name)
	assert.Equal(t, "grch38", info.Genome)
	assert.Equal(t, "v1", info.Version)
}

func TestSqliteWithinGenes(t *testing.T) {
	genedb := newTestGeneDB(t)

	location, err := dna.ParseLocation("chr3:187746000-187746100")
	require.NoError(t, err)

	features, err := genedb.WithinGenes(location, locgene.TranscriptLevel)
	require.NoError(t, err)

	require.Len(t, features, 1)
	assert.Equal(t, "GENE1", features[0].GeneId)
	assert.Equal(t, "BCL6", features[0].GeneSymbol)
	assert.Equal(t, "+", features[0].Strand)
	// tss_dist is stranded_start minus the query midpoint
	assert.Equal(t, 187745450-187746050, features[0].TssDist)
}

func TestSqliteWithinGenesAndPromoter(t *testing.T) {
	genedb := newTestGeneDB(t)

	// upstream of the + strand TSS, only reachable with padding
	location, err := dna.ParseLocation("chr3:187744000-187744100")
	require.NoError(t, err)

	features, err := genedb.WithinGenes(location, locgene.TranscriptLevel)
	require.NoError(t, err)
	assert.Empty(t, features)

	features, err = genedb.WithinGenesAndPromoter(location, locgene.TranscriptLevel, 2000)
	require.NoError(t, err)

	require.Len(t, features, 1)
	assert.Equal(t, "GENE1", features[0].GeneId)
}

func TestSqliteInExon(t *testing.T) {
	genedb := newTestGeneDB(t)

	inExon, err := dna.ParseLocation("chr3:187747100-187747150")
	require.NoError(t, err)

	exons, err := genedb.InExon(inExon, "GENE1")
	require.NoError(t, err)
	require.Len(t, exons, 1)
	assert.Equal(t, 187747000, exons[0].Start)

	inIntron, err := dna.ParseLocation("chr3:187748000-187748050")
	require.NoError(t, err)

	exons, err = genedb.InExon(inIntron, "GENE1")
	require.NoError(t, err)
	assert.Empty(t, exons)
}

func TestSqliteClosestGenes(t *testing.T) {
	genedb := newTestGeneDB(t)

	location, err := dna.ParseLocation("chr3:187740000-187740000")
	require.NoError(t, err)

	features, err := genedb.ClosestGenes(location, 2, locgene.GeneLevel)
	require.NoError(t, err)

	// GENE1 TSS is 5450 away, GENE2 TSS (its end, - strand) is 40000
	require.Len(t, features, 2)
	assert.Equal(t, "GENE1", features[0].GeneId)
	assert.Equal(t, 5450, features[0].TssDist)
	assert.Equal(t, "GENE2", features[1].GeneId)
	assert.Equal(t, -40000, features[1].TssDist)

	features, err = genedb.ClosestGenes(location, 1, locgene.GeneLevel)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "GENE1", features[0].GeneId)
}

func TestGeneDBCache(t *testing.T) {
	dir := t.TempDir()

	makeTestGeneFile(t, filepath.Join(dir, "grch38.db"))

	cache, err := locgene.NewGeneDBCache(dir)
	require.NoError(t, err)

	defer cache.Close()

	infos, err := cache.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "grch38", infos[0].Name)

	_, err = cache.GeneDB("grch38")
	require.NoError(t, err)

	_, err = cache.GeneDB("mm39")
	assert.Error(t, err)

	// databases dropped into the directory later are opened lazily
	makeTestGeneFile(t, filepath.Join(dir, "mm39.db"))

	genedb, err := cache.GeneDB("mm39")
	require.NoError(t, err)

	info, err := genedb.GeneDBInfo()
	require.NoError(t, err)
	assert.Equal(t, "mm39", info.Name)
}

func TestSqliteAnnotateEndToEnd(t *testing.T) {
	genedb := newTestGeneDB(t)

	annotateDb := locgene.NewAnnotateDb(genedb, dna.DefaultTSSRegion(), 2)

	location, err := dna.ParseLocation("chr3:187745448-187745468")
	require.NoError(t, err)

	annotation, err := annotateDb.Annotate(location)
	require.NoError(t, err)

	assert.Equal(t, []string{"GENE1"}, annotation.GeneIds)
	assert.Equal(t, []string{"promoter,intronic"}, annotation.PromLabels)
	assert.Equal(t, []string{"-8"}, annotation.TssDists)

	require.Len(t, annotation.ClosestGenes, 2)
	assert.Equal(t, "GENE1", annotation.ClosestGenes[0].Feature.GeneId)
	assert.Equal(t, locgene.IntergenicLabel, annotation.ClosestGenes[1].PromLabel)
}
