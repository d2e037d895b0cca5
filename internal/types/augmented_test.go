package types

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type AugmentedSeriesTestSuite struct {
	suite.Suite
	series Series
}

func TestAugmentedSeriesSuite(t *testing.T) {
	suite.Run(t, new(AugmentedSeriesTestSuite))
}

func (suite *AugmentedSeriesTestSuite) SetupTest() {
	suite.series = Series{
		Symbol: "CU",
		Bars: []Bar{
			{Time: day(1), Close: 10},
			{Time: day(2), Close: 12},
		},
	}
}

func (suite *AugmentedSeriesTestSuite) TestSetAndRead() {
	aug := NewAugmentedSeries(suite.series)
	suite.Equal(2, aug.Len())
	suite.Equal("CU", aug.Symbol())

	suite.NoError(aug.Set(IndicatorTypeMA, []float64{math.NaN(), 11}))
	suite.True(aug.Has(IndicatorTypeMA))
	suite.False(aug.Has(IndicatorTypeEMA))
	suite.Equal(11.0, aug.Value(IndicatorTypeMA, 1))
	suite.True(math.IsNaN(aug.Value(IndicatorTypeMA, 0)))
	suite.True(math.IsNaN(aug.Value(IndicatorTypeMA, 5)))
	suite.True(math.IsNaN(aug.Value(IndicatorTypeEMA, 0)))
	suite.Equal([]IndicatorType{IndicatorTypeMA}, aug.Names())
	suite.Equal(12.0, aug.Bar(1).Close)
}

func (suite *AugmentedSeriesTestSuite) TestSetRejectsMisalignedColumn() {
	aug := NewAugmentedSeries(suite.series)
	err := aug.Set(IndicatorTypeMA, []float64{1})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMisalignedData))
}

func (suite *AugmentedSeriesTestSuite) TestColumnIsACopy() {
	aug := NewAugmentedSeries(suite.series)
	suite.NoError(aug.Set(IndicatorTypeATR, []float64{1, 2}))

	column, err := aug.Column(IndicatorTypeATR)
	suite.NoError(err)
	column[0] = 99

	suite.Equal(1.0, aug.Value(IndicatorTypeATR, 0))

	_, err = aug.Column(IndicatorTypeADX)
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))
}

func (suite *AugmentedSeriesTestSuite) TestSetTwiceKeepsOrder() {
	aug := NewAugmentedSeries(suite.series)
	suite.NoError(aug.Set(IndicatorTypeATR, []float64{1, 2}))
	suite.NoError(aug.Set(IndicatorTypeMA, []float64{1, 2}))
	suite.NoError(aug.Set(IndicatorTypeATR, []float64{3, 4}))

	suite.Equal([]IndicatorType{IndicatorTypeATR, IndicatorTypeMA}, aug.Names())
	suite.Equal(4.0, aug.Value(IndicatorTypeATR, 1))
}
