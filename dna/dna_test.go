package dna_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomekit/locgene/dna"
)

func TestParseLocation(t *testing.T) {
	location, err := dna.ParseLocation("chr3:187745448-187745468")
	require.NoError(t, err)

	assert.Equal(t, "chr3", location.Chr)
	assert.Equal(t, 187745448, location.Start)
	assert.Equal(t, 187745468, location.End)
	assert.Equal(t, "chr3:187745448-187745468", location.String())
}

func TestParseLocationSingleBase(t *testing.T) {
	location, err := dna.ParseLocation("chr1:1000")
	require.NoError(t, err)

	assert.Equal(t, 1000, location.Start)
	assert.Equal(t, 1000, location.End)
	assert.Equal(t, 1, location.Len())
}

func TestParseLocationCommas(t *testing.T) {
	location, err := dna.ParseLocation("chr3:187,745,448-187,745,468")
	require.NoError(t, err)

	assert.Equal(t, 187745448, location.Start)
	assert.Equal(t, 187745468, location.End)
}

func TestParseLocationInvalid(t *testing.T) {
	invalid := []string{
		"",
		"chr3",
		"chr3:abc-100",
		"chr3:100-abc",
		"chr3:200-100",
		":100-200",
	}

	for _, text := range invalid {
		_, err := dna.ParseLocation(text)
		assert.Error(t, err, text)
	}
}

func TestNewLocation(t *testing.T) {
	_, err := dna.NewLocation("", 1, 2)
	assert.Error(t, err)

	_, err = dna.NewLocation("chr1", -1, 2)
	assert.Error(t, err)

	_, err = dna.NewLocation("chr1", 5, 2)
	assert.Error(t, err)

	location, err := dna.NewLocation("chr1", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, location.Len())
}

func TestMid(t *testing.T) {
	location, err := dna.NewLocation("chr1", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, 150, location.Mid())

	// floor midpoint on odd spans
	location, err = dna.NewLocation("chr1", 100, 201)
	require.NoError(t, err)
	assert.Equal(t, 150, location.Mid())
}

func TestChromToInt(t *testing.T) {
	assert.Equal(t, 1, dna.ChromToInt("chr1"))
	assert.Equal(t, 10, dna.ChromToInt("10"))
	assert.Equal(t, 23, dna.ChromToInt("chrX"))
	assert.Equal(t, 24, dna.ChromToInt("chrY"))
	assert.Equal(t, 25, dna.ChromToInt("chrM"))
	assert.Equal(t, 25, dna.ChromToInt("chrMT"))
	assert.Equal(t, 26, dna.ChromToInt("chrUn_gl000220"))
}

func TestTSSRegion(t *testing.T) {
	region, err := dna.NewTSSRegion(2000, 1000)
	require.NoError(t, err)

	assert.Equal(t, 2000, region.Offset5P())
	assert.Equal(t, 1000, region.Offset3P())
	assert.Equal(t, 2000, region.Pad())
	assert.Equal(t, "[2000,1000]", region.String())

	region, err = dna.NewTSSRegion(500, 800)
	require.NoError(t, err)
	assert.Equal(t, 800, region.Pad())

	_, err = dna.NewTSSRegion(-1, 0)
	assert.Error(t, err)
}

func TestDefaultTSSRegion(t *testing.T) {
	region := dna.DefaultTSSRegion()

	assert.Equal(t, 2000, region.Offset5P())
	assert.Equal(t, 1000, region.Offset3P())
}
