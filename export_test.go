package korm

import (
	"github.com/rs/zerolog"
)

func MissingTable(err error) (string, bool) {
	return missingTable(err)
}

func NewLogger(cfg LogConfig) (zerolog.Logger, error) {
	return newLogger(cfg)
}
