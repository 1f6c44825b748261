// Package routes exposes the annotation engine over HTTP.
package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/genomekit/locgene"
	"github.com/genomekit/locgene/dna"
)

type (
	// LocationsReq is the POST body shared by the location-based routes.
	LocationsReq struct {
		Locations []string `json:"locations"`
	}

	DataResp struct {
		Status int `json:"status"`
		Data   any `json:"data"`
	}

	GenesResp struct {
		Location *dna.Location             `json:"location"`
		Features []*locgene.GenomicFeature `json:"features"`
	}

	Routes struct {
		cache *locgene.GeneDBCache
	}
)

const (
	DefaultClosestN int = 5

	// limit amount of data returned per request
	MaxAnnotations int = 100
)

var ErrLocationCannotBeEmpty = errors.New("location cannot be empty")

func New(cache *locgene.GeneDBCache) *Routes {
	return &Routes{cache: cache}
}

// Setup registers the gene routes on a router.
func (routes *Routes) Setup(r *gin.Engine) {
	r.GET("/genomes", routes.GenomesRoute)
	r.POST("/annotate/:assembly", routes.AnnotateRoute)
	r.POST("/within/:assembly", routes.WithinGenesRoute)
	r.POST("/closest/:assembly", routes.ClosestGenesRoute)
}

func (routes *Routes) GenomesRoute(c *gin.Context) {
	infos, err := routes.cache.List()

	if err != nil {
		badReqResp(c, err)
		return
	}

	makeDataResp(c, infos)
}

func (routes *Routes) AnnotateRoute(c *gin.Context) {
	locations, err := parseLocationsFromPost(c)

	if err != nil {
		badReqResp(c, err)
		return
	}

	locations = locations[0:min(len(locations), MaxAnnotations)]

	db, err := routes.cache.GeneDB(c.Param("assembly"))

	if err != nil {
		badReqResp(c, err)
		return
	}

	closestN := parseNumParam(c, "closest", DefaultClosestN)

	tssRegion := parseTSSRegion(c)

	annotateDb := locgene.NewAnnotateDb(db, tssRegion, closestN)

	data := make([]*locgene.GeneAnnotation, len(locations))

	for li, location := range locations {
		annotation, err := annotateDb.Annotate(location)

		if err != nil {
			log.Error().Msgf("error annotating location %s: %v", location, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		data[li] = annotation
	}

	if c.Query("output") == "text" {
		tsv, err := locgene.MakeGeneTable(data, tssRegion)

		if err != nil {
			badReqResp(c, err)
			return
		}

		c.String(http.StatusOK, tsv)
	} else {
		makeDataResp(c, data)
	}
}

func (routes *Routes) WithinGenesRoute(c *gin.Context) {
	locations, err := parseLocationsFromPost(c)

	if err != nil {
		badReqResp(c, err)
		return
	}

	db, err := routes.cache.GeneDB(c.Param("assembly"))

	if err != nil {
		badReqResp(c, err)
		return
	}

	level := locgene.ParseLevel(c.Query("level"))

	data := make([]*GenesResp, len(locations))

	for li, location := range locations {
		features, err := db.WithinGenes(location, level)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		data[li] = &GenesResp{Location: location, Features: features}
	}

	makeDataResp(c, data)
}

// ClosestGenesRoute finds the n closest genes to each location.
func (routes *Routes) ClosestGenesRoute(c *gin.Context) {
	locations, err := parseLocationsFromPost(c)

	if err != nil {
		badReqResp(c, err)
		return
	}

	db, err := routes.cache.GeneDB(c.Param("assembly"))

	if err != nil {
		badReqResp(c, err)
		return
	}

	closestN := parseNumParam(c, "closest", DefaultClosestN)

	data := make([]*GenesResp, len(locations))

	for li, location := range locations {
		features, err := db.ClosestGenes(location, closestN, locgene.GeneLevel)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		data[li] = &GenesResp{Location: location, Features: features}
	}

	makeDataResp(c, data)
}

func parseLocationsFromPost(c *gin.Context) ([]*dna.Location, error) {
	var req LocationsReq

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}

	if len(req.Locations) == 0 {
		return nil, ErrLocationCannotBeEmpty
	}

	locations := make([]*dna.Location, len(req.Locations))

	for i, text := range req.Locations {
		location, err := dna.ParseLocation(text)

		if err != nil {
			return nil, err
		}

		locations[i] = location
	}

	return locations, nil
}

// parseTSSRegion reads the promoter query param, e.g. "2000,1000",
// falling back to the default window when absent or malformed.
func parseTSSRegion(c *gin.Context) *dna.TSSRegion {
	v := c.Query("promoter")

	if v == "" {
		return dna.DefaultTSSRegion()
	}

	tokens := strings.Split(v, ",")

	if len(tokens) != 2 {
		return dna.DefaultTSSRegion()
	}

	offset5p, err := strconv.Atoi(tokens[0])

	if err != nil {
		return dna.DefaultTSSRegion()
	}

	offset3p, err := strconv.Atoi(tokens[1])

	if err != nil {
		return dna.DefaultTSSRegion()
	}

	region, err := dna.NewTSSRegion(offset5p, offset3p)

	if err != nil {
		return dna.DefaultTSSRegion()
	}

	return region
}

func parseNumParam(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))

	if err != nil || n < 1 {
		return def
	}

	return n
}

func makeDataResp(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResp{Status: http.StatusOK, Data: data})
}

func badReqResp(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
