package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the application logger. Production config writes JSON to stderr;
// setting debug switches to the human-readable development encoder.
func New(debug bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("error creating new logger: %w", err)
	}
	return log, nil
}
