package controllers

import (
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}
