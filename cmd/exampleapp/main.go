// Package main is a simple example app to write logs to see log rotation in action.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	formatter "github.com/samber/slog-formatter"
	"golift.io/rollerr"
	"golift.io/rollerr/dateroll"
)

// ///////////////////////////////////////////////////////////////////////// //

/* This is a simple example app to write logs to see log rotation in action. */

// Usage, size rotation and compression:
//   go run ./cmd/exampleapp size compress
//
// Usage, date rotation, one backup per minute:
//   go run ./cmd/exampleapp date
//
// Usage, size rotation fed through the async queue:
//   go run ./cmd/exampleapp size queue

const (
	logFileSize     = 1024 * 1024 // 1 megabyte.
	logFilePath     = "/tmp/myfolder/myfile.log"
	bytesPerLogLine = 5000
	timeBetweenLogs = time.Millisecond * 5
	backupCount     = 10
	errorEvery      = 50 // every Nth line is an error line.
	queueBackoff    = time.Millisecond * 50
)

// ///////////////////////////////////////////////////////////////////////// //

func main() {
	var (
		roller *rollerr.Roller
		err    error
	)

	switch {
	case isArg("size"):
		roller, err = sizeRoller()
	case isArg("date"):
		roller, err = dateRoller()
	default:
		fmt.Println("pass a mode arg: size or date")
		fmt.Println("modifiers: compress (gzip backups), queue (async writes)")
		os.Exit(1)
	}

	if err != nil {
		panic(err)
	}

	if isArg("queue") {
		makeQueueLogs(roller)
	}

	makeLogs(newLogger(roller))
}

// Write fake logs!
func makeLogs(logger *slog.Logger) {
	logLine := string(bytes.Repeat([]byte{'_'}, bytesPerLogLine))

	count := 0
	ticker := time.NewTicker(timeBetweenLogs)

	for range ticker.C {
		fmt.Print(".")

		if count++; count%errorEvery == 0 {
			logger.Error("fake problem", "error", fmt.Errorf("failure number %d", count), "token", "hunter2")
			continue
		}

		logger.Info(logLine, "count", count)
	}
}

// makeQueueLogs pushes raw lines through Enqueue instead of the slog pipeline
// and backs off whenever the roller reports a full queue.
func makeQueueLogs(roller *rollerr.Roller) {
	logLine := append(bytes.Repeat([]byte{'_'}, bytesPerLogLine), '\n')

	ticker := time.NewTicker(timeBetweenLogs)
	for range ticker.C {
		fmt.Print(".")

		if !roller.Enqueue(logLine) {
			fmt.Print("!")
			time.Sleep(queueBackoff)
		}
	}
}

// newLogger builds the slog pipeline that feeds the roller. A formatter
// middleware flattens errors and scrubs the token attribute, then a text
// handler writes the result into the rolling file.
func newLogger(w io.Writer) *slog.Logger {
	middleware := formatter.NewFormatterHandler(
		formatter.ErrorFormatter("error"),
		formatter.FormatByKey("token", func(slog.Value) slog.Value {
			return slog.StringValue("***********")
		}),
	)

	return slog.New(middleware(slog.NewTextHandler(w, nil)))
}

func sizeRoller() (*rollerr.Roller, error) {
	backups := backupCount

	return rollerr.New(&rollerr.Config{
		Filename:   logFilePath,
		MaxBytes:   logFileSize,
		MaxBackups: &backups,
		Compress:   isArg("compress"),
		Observer:   printObserver{},
	})
}

func dateRoller() (*rollerr.Roller, error) {
	return rollerr.New(&rollerr.Config{
		Filename:    logFilePath,
		DatePattern: dateroll.PatternMinute,
		DaysToKeep:  1,
		Compress:    isArg("compress"),
		Observer:    printObserver{},
	})
}

// printObserver writes roller events to stdout so you can watch the backups
// shuffle while the app runs.
type printObserver struct {
	rollerr.NopObserver
}

func (printObserver) OnRotate(info rollerr.RotateInfo) {
	fmt.Printf("\nfile rotated: %s -> %s (%d bytes)\n", info.Path, info.NewFile, info.Size)
}

func (printObserver) OnError(err error) {
	fmt.Println("\nroller error:", err)
}

// seems easy, but flag is better.
func isArg(arg string) bool {
	for _, a := range os.Args {
		if strings.EqualFold(a, arg) {
			return true
		}
	}

	return false
}
