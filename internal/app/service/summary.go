package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/element"
	"github.com/2sn/starfit-server/internal/domain/model"
)

// detectionFloor is the detection threshold below which an element counts as
// having none.
const detectionFloor = -80.0

// Summarize extracts the presentation fields of a fit result.
func Summarize(cfg *model.JobConfig, res *model.FitResult) *model.ResultSummary {
	star := res.Star
	s := &model.ResultSummary{
		StarName:                star.Name,
		StarVersion:             star.Version,
		StarAbundanceNorm:       star.AbundanceNorm,
		StarInputDataFormat:     star.InputDataFormat,
		StarNCovariances:        star.NCovariances,
		StarCovariances:         compressNames(star.Covariances),
		StarDetectionThresholds: compressNames(star.DetectionThresholds),
		StarUpperLimits:         compressNames(star.UpperLimits),
		StarElements:            compressNames(star.Elements),
		StarMeasured:            compressNames(star.Measured),
		StarSolar:               star.SolarRef,
		StarReference:           star.Source,
		StarNotes:               star.Comment,
		StarFilename:            cfg.StellarData.Filename,

		TextResult: res.TextResult,
		TextDB:     res.TextDB,
	}
	if len(res.TextDB) > 0 {
		s.TextDBNColumns = strconv.Itoa(len(res.TextDB[0]))
	}

	switch cfg.Algorithm {
	case model.AlgorithmGA:
		s.TextTourSize = strconv.Itoa(cfg.TourSize)
		s.TextFracMatingPool = fmt.Sprintf("%4.2f", cfg.FracMatingPool)
		s.TextFracElite = fmt.Sprintf("%4.2f", cfg.FracElite)
		s.TextMutRateIndex = fmt.Sprintf("%4.2f", cfg.MutRateIndex)
		s.TextMutRateOffset = fmt.Sprintf("%4.2f", cfg.MutRateOffset)
		s.TextMutOffsetMagnitude = fmt.Sprintf("%4.2f", cfg.MutOffsetMagnitude)
		s.TextGenerations = strconv.Itoa(res.Generations)
		s.TextTime = common.Time2Human(res.Elapsed)
	case model.AlgorithmMulti:
		s.MultiCombinations = fmt.Sprintf("%s combinations of %d stars", common.FormatThousands(res.NCombinations), res.SolSize)
		if len(res.Group) > 1 {
			parts := make([]string, len(res.GroupComb))
			for i, c := range res.GroupComb {
				parts[i] = strconv.FormatInt(c, 10)
			}
			s.MultiPartitions = strings.Join(parts, " &#xd7; ")
		}
	}

	var detected, covariant, evalZ []int
	for _, e := range res.EvalData {
		z, ok := element.Parse(e.Element)
		if !ok {
			continue
		}
		evalZ = append(evalZ, z)
		if element.Contains(cfg.ZExclude, z) {
			continue
		}
		if e.Detection > detectionFloor {
			detected = append(detected, z)
		}
		if anyNonZero(e.Covariance) {
			covariant = append(covariant, z)
		}
	}
	s.TextDetectionThresholds = orNone(element.Compress(detected))
	s.TextCovariances = orNone(element.Compress(covariant))

	var lolim []int
	for _, z := range cfg.ZLolim {
		if element.Contains(evalZ, z) && !element.Contains(cfg.ZExclude, z) {
			lolim = append(lolim, z)
		}
	}
	s.LolimString = element.Compress(lolim)

	starFull := element.ParseNames(star.Elements)
	var starIn, ignored []int
	for _, z := range starFull {
		if z >= cfg.ZMin && z <= cfg.ZMax {
			starIn = append(starIn, z)
		} else {
			ignored = append(ignored, z)
		}
	}
	s.IgnoredString = element.Compress(ignored)

	var excluded []int
	for _, z := range cfg.ZExclude {
		if element.Contains(starIn, z) {
			excluded = append(excluded, z)
		}
	}
	s.ExcludeString = element.Compress(excluded)

	upper := element.ParseNames(star.UpperLimits)
	var matched, upperUsed []int
	for _, z := range evalZ {
		if !element.Contains(cfg.ZExclude, z) && !element.Contains(cfg.ZLolim, z) && !element.Contains(upper, z) {
			matched = append(matched, z)
		}
	}
	for _, z := range upper {
		if !element.Contains(cfg.ZExclude, z) && element.Contains(evalZ, z) {
			upperUsed = append(upperUsed, z)
		}
	}
	s.MatchedElementsString = element.Compress(matched)
	s.UpperLimitsString = element.Compress(upperUsed)

	if !cfg.UpperLim {
		var dropped []int
		for _, z := range starIn {
			if !element.Contains(cfg.ZExclude, z) && !element.Contains(evalZ, z) {
				dropped = append(dropped, z)
			}
		}
		s.UpperExcludeString = element.Compress(dropped)
	}
	return s
}

func compressNames(names []string) string {
	return element.Compress(element.ParseNames(names))
}

func anyNonZero(xs []float64) bool {
	for _, x := range xs {
		if x != 0 {
			return true
		}
	}
	return false
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
