package logger

import (
	"log"
	"os"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Warn  *log.Logger
	Debug *log.Logger
)

func init() {
	flags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile

	Info = log.New(os.Stdout, "INFO: ", flags)
	Error = log.New(os.Stdout, "ERROR: ", flags)
	Warn = log.New(os.Stdout, "WARN: ", flags)
	Debug = log.New(os.Stdout, "DEBUG: ", flags)
}
