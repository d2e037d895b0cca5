package commission_fee

import (
	"fmt"
	"testing"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	for _, quantity := range []float64{0, 1, 10000, -100} {
		suite.Equal(0.0, fee.Calculate(quantity))
	}
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 1.0},
		{"small quantity - min fee", 10, 1.0},
		{"quantity at threshold", 200, 1.0},
		{"large quantity", 1000, 5.0},
		{"short quantity", -1000, 5.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, fee.Calculate(tc.quantity))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestPerLotCommissionFee() {
	fee := NewPerLotCommissionFee(2.5)

	suite.Equal(0.0, fee.Calculate(0))
	suite.Equal(2.5, fee.Calculate(1))
	suite.Equal(10.0, fee.Calculate(4))
	suite.Equal(10.0, fee.Calculate(-4))
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name           string
		broker         Broker
		perLot         float64
		expectedType   string
		testQuantity   float64
		expectedResult float64
	}{
		{"interactive broker", BrokerInteractiveBroker, 0, "*commission_fee.InteractiveBrokerCommissionFee", 1000, 5.0},
		{"per lot", BrokerPerLot, 3, "*commission_fee.PerLotCommissionFee", 2, 6.0},
		{"per lot default", BrokerPerLot, 0, "*commission_fee.PerLotCommissionFee", 2, 2 * DefaultPerLotFee},
		{"zero commission", BrokerZero, 0, "*commission_fee.ZeroCommissionFee", 1000, 0},
		{"unknown broker", Broker("unknown"), 0, "*commission_fee.ZeroCommissionFee", 1000, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.broker, tc.perLot)
			suite.Equal(tc.expectedType, fmt.Sprintf("%T", handler))
			suite.Equal(tc.expectedResult, handler.Calculate(tc.testQuantity))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestParseBroker() {
	broker, err := ParseBroker("")
	suite.NoError(err)
	suite.Equal(BrokerZero, broker)

	broker, err = ParseBroker("per_lot")
	suite.NoError(err)
	suite.Equal(BrokerPerLot, broker)

	_, err = ParseBroker("robinhood")
	suite.True(errors.IsConfigurationError(err))
}
