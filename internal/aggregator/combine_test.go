package aggregator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/stretchr/testify/suite"
)

type CombineTestSuite struct {
	suite.Suite
}

func TestCombineSuite(t *testing.T) {
	suite.Run(t, new(CombineTestSuite))
}

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func (suite *CombineTestSuite) TestOuterJoinOnDate() {
	a := []types.EquityPoint{
		{Time: day(0), Equity: 1},
		{Time: day(1), Equity: 0.5},
	}
	b := []types.EquityPoint{
		{Time: day(1), Equity: 0.25},
		{Time: day(2), Equity: 1},
	}

	portfolio := Combine([][]types.EquityPoint{a, b}, 100)
	suite.Require().Len(portfolio, 3)

	suite.Equal(day(0), portfolio[0].Time)
	suite.Equal(1.0, portfolio[0].PnL)
	suite.Equal(101.0, portfolio[0].Balance)
	suite.Equal(0.01, portfolio[0].Return)

	suite.Equal(0.75, portfolio[1].PnL)
	suite.Equal(100.75, portfolio[1].Balance)
	suite.Equal(0.0075, portfolio[1].Return)

	suite.Equal(day(2), portfolio[2].Time)
	suite.Equal(1.5, portfolio[2].PnL)
	suite.Equal(101.5, portfolio[2].Balance)
}

func (suite *CombineTestSuite) TestSameDateDifferentTimeOfDay() {
	closeFeed := []types.EquityPoint{{Time: day(0).Add(15 * time.Hour), Equity: 1}}
	midnightFeed := []types.EquityPoint{{Time: day(0), Equity: 2}}

	portfolio := Combine([][]types.EquityPoint{closeFeed, midnightFeed}, 100)
	suite.Require().Len(portfolio, 1)
	suite.Equal(day(0), portfolio[0].Time)
	suite.Equal(3.0, portfolio[0].PnL)
	suite.Equal(103.0, portfolio[0].Balance)
}

func (suite *CombineTestSuite) TestIntradayPointsCollapseToDate() {
	shanghai := time.FixedZone("CST", 8*60*60)
	// 06:00 and 07:00 in UTC+8 are both on the previous day's UTC date
	hourly := []types.EquityPoint{
		{Time: time.Date(2024, 3, 2, 6, 0, 0, 0, shanghai), Equity: 1},
		{Time: time.Date(2024, 3, 2, 7, 0, 0, 0, shanghai), Equity: 4},
		{Time: day(1).Add(10 * time.Hour), Equity: 2},
		{Time: day(1).Add(11 * time.Hour), Equity: 3},
	}

	portfolio := Combine([][]types.EquityPoint{hourly}, 10)
	suite.Require().Len(portfolio, 2)
	suite.Equal(day(0), portfolio[0].Time)
	suite.Equal(4.0, portfolio[0].PnL)
	suite.Equal(day(1), portfolio[1].Time)
	suite.Equal(3.0, portfolio[1].PnL)
	suite.Equal(13.0, portfolio[1].Balance)
}

func (suite *CombineTestSuite) TestOrderIndependent() {
	curves := [][]types.EquityPoint{
		{{Time: day(0), Equity: 0.1}, {Time: day(1), Equity: 0.3}, {Time: day(3), Equity: -0.7}},
		{{Time: day(1), Equity: 0.2}, {Time: day(2), Equity: 0.1}},
		{{Time: day(0), Equity: -0.3}, {Time: day(2), Equity: 1e-9}, {Time: day(3), Equity: 12345.6789}},
	}
	reversed := [][]types.EquityPoint{curves[2], curves[1], curves[0]}
	rotated := [][]types.EquityPoint{curves[1], curves[2], curves[0]}

	expected := Combine(curves, 1_000_000)
	suite.Equal(expected, Combine(reversed, 1_000_000))
	suite.Equal(expected, Combine(rotated, 1_000_000))

	// decimal sums are exact, float sums would leave 0.30000000000000004 here
	suite.Equal(0.3, Combine([][]types.EquityPoint{
		{{Time: day(0), Equity: 0.1}},
		{{Time: day(0), Equity: 0.2}},
	}, 1)[0].PnL)
}

func (suite *CombineTestSuite) TestUsesEquityChanges() {
	// a flat curve after a gain keeps contributing only the gain once
	curve := []types.EquityPoint{
		{Time: day(0), Equity: 0},
		{Time: day(1), Equity: 5},
		{Time: day(2), Equity: 5},
		{Time: day(3), Equity: 2},
	}

	portfolio := Combine([][]types.EquityPoint{curve}, 10)
	suite.Require().Len(portfolio, 4)
	suite.Equal([]float64{0, 5, 5, 2}, []float64{portfolio[0].PnL, portfolio[1].PnL, portfolio[2].PnL, portfolio[3].PnL})
	suite.Equal(12.0, portfolio[3].Balance)
	suite.InDelta(0.2, portfolio[3].Return, 1e-12)
}

func (suite *CombineTestSuite) TestEmpty() {
	suite.Empty(Combine(nil, 100))
	suite.Empty(Combine([][]types.EquityPoint{{}, {}}, 100))
}

func (suite *CombineTestSuite) TestDoesNotModifyInput() {
	curve := []types.EquityPoint{{Time: day(0), Equity: 1}, {Time: day(1), Equity: 2}}
	snapshot := append([]types.EquityPoint(nil), curve...)

	Combine([][]types.EquityPoint{curve, curve}, 100)
	suite.Equal(snapshot, curve)
}
