package types

// IndicatorType names a derived column of an AugmentedSeries.
type IndicatorType string

const (
	IndicatorTypeMA         IndicatorType = "ma"
	IndicatorTypeEMA        IndicatorType = "ema"
	IndicatorTypeStdDev     IndicatorType = "std_dev"
	IndicatorTypeTrueRange  IndicatorType = "true_range"
	IndicatorTypeATR        IndicatorType = "atr"
	IndicatorTypeHighest    IndicatorType = "highest"
	IndicatorTypeLowest     IndicatorType = "lowest"
	IndicatorTypeMomentum   IndicatorType = "momentum"
	IndicatorTypeDMIPlus    IndicatorType = "dmi_plus"
	IndicatorTypeDMIMinus   IndicatorType = "dmi_minus"
	IndicatorTypeDX         IndicatorType = "dx"
	IndicatorTypeADX        IndicatorType = "adx"
	IndicatorTypeADXR       IndicatorType = "adxr"
	IndicatorTypeLookback   IndicatorType = "lookback"
	IndicatorTypeUpperBand  IndicatorType = "upper_band"
	IndicatorTypeLowerBand  IndicatorType = "lower_band"
	IndicatorTypeMiddleBand IndicatorType = "middle_band"
)
