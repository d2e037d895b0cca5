package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	r := DefaultRegistry()

	suite.Equal([]string{
		CloseMomentumName,
		DynamicBreakoutName,
		RangeBreakoutName,
		ThreeEMACrossoverName,
		TrafficJamName,
	}, r.Names())

	for _, name := range r.Names() {
		s, err := r.New(name, nil)
		suite.Require().NoError(err)
		suite.Equal(name, s.Name())

		schema, err := r.Schema(name)
		suite.NoError(err)
		suite.Contains(schema, `"lots"`)
	}
}

func (suite *RegistryTestSuite) TestUnknownStrategy() {
	_, err := DefaultRegistry().New("nope", nil)
	suite.True(errors.IsConfigurationError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *RegistryTestSuite) TestDuplicateRegistration() {
	r := NewRegistry()
	reg := Registration{
		Name: "x",
		New:  func(map[string]any) (Strategy, error) { return NewCloseMomentum(nil) },
	}

	suite.NoError(r.Register(reg))

	err := r.Register(reg)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyAlreadyDefined))

	err = r.Register(Registration{Name: "", New: nil})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	schema, err := r.Schema("x")
	suite.NoError(err)
	suite.Equal("{}", schema)
}
