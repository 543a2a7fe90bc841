// SPDX-License-Identifier: MIT

package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger builds the process logger. With a file, output goes to both
// w and a rotated log; the returned func closes the file.
func setupLogger(level, file string, w io.Writer) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(lvl)

	if file == "" {
		logger.SetOutput(w)
		return logger, func() {}, nil
	}
	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(w, rotated))

	return logger, func() { _ = rotated.Close() }, nil
}
