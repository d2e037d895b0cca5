package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (suite *ParamsTestSuite) TestDefaults() {
	s, err := NewThreeEMACrossover(nil)
	suite.Require().NoError(err)
	suite.Equal(DefaultThreeEMACrossoverParams(), s.Params())
	suite.Equal(29, s.RequiredLookback())
	suite.Equal(1.0, s.Lots())
}

func (suite *ParamsTestSuite) TestOverridesMergeOntoDefaults() {
	s, err := NewThreeEMACrossover(map[string]any{"avgLen1": 5, "lots": 3})
	suite.Require().NoError(err)

	params := s.Params().(ThreeEMACrossoverParams)
	suite.Equal(5, params.AvgLen1)
	suite.Equal(12, params.AvgLen2)
	suite.Equal(0.25, params.TrailAccel)
	suite.Equal(3.0, s.Lots())
}

func (suite *ParamsTestSuite) TestUnknownKeyRejected() {
	_, err := NewThreeEMACrossover(map[string]any{"avgLen4": 5})
	suite.True(errors.IsConfigurationError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownParameter))
	suite.Equal(errors.KindConfiguration, errors.KindOf(err))
}

func (suite *ParamsTestSuite) TestMistypedValueRejected() {
	_, err := NewRangeBreakout(map[string]any{"rangeLen": "seven"})
	suite.True(errors.IsConfigurationError(err))
}

func (suite *ParamsTestSuite) TestValidation() {
	tests := []struct {
		name      string
		overrides map[string]any
		build     func(map[string]any) error
	}{
		{"floor above ceiling", map[string]any{"floorAmt": 70}, func(o map[string]any) error { _, err := NewDynamicBreakout(o); return err }},
		{"zero lots", map[string]any{"lots": 0}, func(o map[string]any) error { _, err := NewCloseMomentum(o); return err }},
		{"accel above max", map[string]any{"trailAccel": 0.8}, func(o map[string]any) error { _, err := NewThreeEMACrossover(o); return err }},
		{"negative period", map[string]any{"dmiN": -1}, func(o map[string]any) error { _, err := NewTrafficJam(o); return err }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.build(tc.overrides)
			suite.True(errors.IsConfigurationError(err))
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
		})
	}
}

func (suite *ParamsTestSuite) TestParamsMap() {
	m := ParamsMap(DefaultRangeBreakoutParams())
	suite.Equal(7, m["rangeLen"])
	suite.Equal(200, m["rngPcnt"])
	suite.Len(m, 5)
}

func (suite *ParamsTestSuite) TestToJSONSchema() {
	schema, err := ToJSONSchema(DefaultTrafficJamParams())
	suite.NoError(err)
	suite.Contains(schema, `"dmiN"`)
	suite.Contains(schema, `"proactiveStopBars"`)
}
