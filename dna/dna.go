// Package dna provides genomic coordinate primitives shared by the
// annotation engine and its callers.
package dna

import (
	"fmt"
	"strconv"
	"strings"
)

// A Location is a genomic interval on a chromosome. Coordinates are
// 1-based and inclusive, start <= end.
type Location struct {
	Chr   string `json:"chr"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func NewLocation(chr string, start int, end int) (*Location, error) {
	if chr == "" {
		return nil, fmt.Errorf("chromosome cannot be empty")
	}

	if start < 0 || end < 0 {
		return nil, fmt.Errorf("%s:%d-%d: coordinates cannot be negative", chr, start, end)
	}

	if start > end {
		return nil, fmt.Errorf("%s:%d-%d: start cannot be greater than end", chr, start, end)
	}

	return &Location{Chr: chr, Start: start, End: end}, nil
}

// ParseLocation parses locations of the form "chr3:187745448-187745468".
// A bare "chr3:187745448" is treated as a single base interval.
func ParseLocation(text string) (*Location, error) {
	text = strings.TrimSpace(text)

	chr, rest, ok := strings.Cut(text, ":")

	if !ok {
		return nil, fmt.Errorf("%s is not a valid location", text)
	}

	rest = strings.ReplaceAll(rest, ",", "")

	startText, endText, ok := strings.Cut(rest, "-")

	if !ok {
		endText = startText
	}

	start, err := strconv.Atoi(startText)

	if err != nil {
		return nil, fmt.Errorf("%s is not a valid start position", startText)
	}

	end, err := strconv.Atoi(endText)

	if err != nil {
		return nil, fmt.Errorf("%s is not a valid end position", endText)
	}

	return NewLocation(chr, start, end)
}

// Mid returns the floor midpoint of the interval.
func (location *Location) Mid() int {
	return (location.Start + location.End) / 2
}

func (location *Location) Len() int {
	return location.End - location.Start + 1
}

func (location *Location) String() string {
	return fmt.Sprintf("%s:%d-%d", location.Chr, location.Start, location.End)
}

// ChromToInt maps chromosome names to integers for ordering, so that
// chr2 sorts before chr10 and the sex chromosomes sort last.
func ChromToInt(chr string) int {
	c := strings.TrimPrefix(strings.ToLower(chr), "chr")

	switch c {
	case "x":
		return 23
	case "y":
		return 24
	case "m", "mt":
		return 25
	default:
		n, err := strconv.Atoi(c)

		if err != nil {
			return 26
		}

		return n
	}
}

// A TSSRegion is the asymmetric promoter window around a transcription
// start site: offset5p bases upstream and offset3p bases downstream in
// transcription direction. Offsets are magnitudes, never negative.
type TSSRegion struct {
	offset5p int
	offset3p int
}

func NewTSSRegion(offset5p int, offset3p int) (*TSSRegion, error) {
	if offset5p < 0 || offset3p < 0 {
		return nil, fmt.Errorf("tss region offsets cannot be negative: %d, %d", offset5p, offset3p)
	}

	return &TSSRegion{offset5p: offset5p, offset3p: offset3p}, nil
}

// DefaultTSSRegion is the conventional 2kb upstream / 1kb downstream
// promoter window.
func DefaultTSSRegion() *TSSRegion {
	return &TSSRegion{offset5p: 2000, offset3p: 1000}
}

func (region *TSSRegion) Offset5P() int {
	return region.offset5p
}

func (region *TSSRegion) Offset3P() int {
	return region.offset3p
}

// Pad returns the larger of the two offsets. Overlap searches are
// extended by this amount on both sides so that promoter-only hits on
// either strand are not missed.
func (region *TSSRegion) Pad() int {
	return max(region.offset5p, region.offset3p)
}

func (region *TSSRegion) String() string {
	return fmt.Sprintf("[%d,%d]", region.offset5p, region.offset3p)
}
