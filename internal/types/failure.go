package types

import "github.com/rxtech-lab/argo-quant/pkg/errors"

// Failure is one failure report entry for an instrument excluded from aggregation.
type Failure struct {
	InstrumentCode string      `yaml:"instrument_code" json:"instrument_code"`
	ErrorKind      errors.Kind `yaml:"error_kind" json:"error_kind"`
	Message        string      `yaml:"message" json:"message"`
}

// NewFailure classifies err for the given instrument.
func NewFailure(code string, err error) Failure {
	return Failure{
		InstrumentCode: code,
		ErrorKind:      errors.KindOf(err),
		Message:        err.Error(),
	}
}
