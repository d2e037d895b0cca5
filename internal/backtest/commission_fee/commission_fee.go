package commission_fee

import (
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

type CommissionFee interface {
	// Calculate the commission fee for one leg of a trade of the given quantity
	Calculate(quantity float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerPerLot            Broker = "per_lot"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerPerLot,
	BrokerZero,
}

// DefaultPerLotFee is the per lot charge used when none is configured.
const DefaultPerLotFee = 5.0

// ParseBroker validates a broker name. An empty name means zero commission.
func ParseBroker(name string) (Broker, error) {
	switch Broker(name) {
	case "":
		return BrokerZero, nil
	case BrokerInteractiveBroker, BrokerPerLot, BrokerZero:
		return Broker(name), nil
	default:
		return "", errors.NewConfigurationError("broker", "unknown commission model",
			errors.Newf(errors.ErrCodeInvalidParameter, "broker %q is not one of interactive_broker, per_lot, zero_commission", name))
	}
}

// GetCommissionFeeHandler returns the fee model for broker. perLotFee is only
// used by BrokerPerLot; a non-positive value falls back to DefaultPerLotFee.
func GetCommissionFeeHandler(broker Broker, perLotFee float64) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerPerLot:
		if perLotFee <= 0 {
			perLotFee = DefaultPerLotFee
		}

		return NewPerLotCommissionFee(perLotFee)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
