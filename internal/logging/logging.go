// Package logging builds the zap loggers used by the commands.
package logging

import "go.uber.org/zap"

// New returns a production JSON logger, or a human-readable development
// logger when dev is set. The logger is named after the command.
func New(name string, dev bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Named(name), nil
}
