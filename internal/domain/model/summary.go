package model

// Description holds the human readable strings derived from a JobConfig.
type Description struct {
	Algorithm        string
	CombinedElements string
	ZMin             string
	ZMax             string
	Databases        string
	NDatabase        string
	Group            string
	SolSizes         string
	Grouping         string
	Pin              string
	Pinning          string
	TimeETA          string
}

// ResultSummary holds the presentation fields extracted from a FitResult.
type ResultSummary struct {
	StarName                string
	StarVersion             int
	StarAbundanceNorm       string
	StarInputDataFormat     string
	StarNCovariances        int
	StarCovariances         string
	StarDetectionThresholds string
	StarUpperLimits         string
	StarElements            string
	StarMeasured            string
	StarSolar               string
	StarReference           string
	StarNotes               string
	StarFilename            string

	TextTourSize           string
	TextFracMatingPool     string
	TextFracElite          string
	TextMutRateIndex       string
	TextMutRateOffset      string
	TextMutOffsetMagnitude string

	TextResult     string
	TextDB         [][]string
	TextDBNColumns string

	TextGenerations string
	TextTime        string

	MultiCombinations string
	MultiPartitions   string

	TextDetectionThresholds string
	TextCovariances         string
	LolimString             string
	ExcludeString           string
	IgnoredString           string
	MatchedElementsString   string
	UpperLimitsString       string
	UpperExcludeString      string
}
