package rollerr_test

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"golift.io/rollerr"
	"golift.io/rollerr/compressor"
	"golift.io/rollerr/dateroll"
	"golift.io/rollerr/sizeroll"
)

// This example shows how to create backup log files just like
// https://github.com/natefinch/lumberjack.
// Files rotate at 100Mb; the ten newest backups are kept and compressed.
// Backup log files are named with an incrementing number; number 1 is
// always the most recent backup.
func Example_lumberjack() {
	ten := 10

	log.SetOutput(rollerr.NewMust(&rollerr.Config{
		Filename:   "/var/log/file.log",
		MaxBytes:   100 * 1024 * 1024, // 100 megabytes.
		MaxBackups: &ten,              // nil keeps one backup, negative keeps none.
		Compress:   true,              // backups become file.log.1.gz, file.log.2.gz, ...
	}))
}

// This example demonstrates a date-stamped log with every Config member
// shown. One backup file is produced per day, kept for two weeks.
func Example_daily() {
	log.SetOutput(rollerr.NewMust(&rollerr.Config{
		Filename:             "/var/log/file.log",     // required.
		DatePattern:          dateroll.DefaultPattern, // ".yyyy-MM-dd" backup labels.
		AlwaysIncludePattern: false,                   // write to file.log, not file.log.2006-01-02.
		KeepFileExt:          true,                    // file.2006-01-02.log instead of file.log.2006-01-02.
		Compress:             true,                    // gzip each backup once it is closed.
		DaysToKeep:           14,                      // delete backups older than two weeks.
		UseUTC:               true,                    // default is the local time zone.
		FileMode:             rollerr.FileMode,        // default: 0644
		DirMode:              rollerr.DirMode,         // default: 0750
		Flags:                rollerr.FlagsAppend,     // "w" truncates on open instead.
		ArchiveDir:           "/var/log/archives",     // override backup log file location.
	}))
}

// This example demonstrates how to trigger an action after a file is
// rotated, by building the rotation policy yourself instead of letting the
// Config derive one.
func Example_postRotateLog() {
	postRotate := func(fileName, newFile string) {
		// This must run in a go routine or a deadlock will occur when calling log.Printf.
		// If you're doing things besides logging, you do not need a go routine, but this
		// function blocks logs, so make it snappy.
		go func() {
			log.Printf("file rotated: %s -> %s", fileName, newFile)
		}()
	}

	roller, err := rollerr.New(&rollerr.Config{
		Filename: "/var/log/file.log",
		Policy: &sizeroll.Layout{
			MaxBytes:   10 * 1024 * 1024,    // 10 megabytes.
			Backups:    10,                  // keep 10 numbered files.
			ArchiveDir: "/var/log/archives", // override backup log file location.
			PostRotate: postRotate,          // optional post-rotate function.
			Filer:      nil,                 // use default: os.Remove
		},
	})
	if err != nil {
		panic(err)
	}

	log.SetOutput(roller)
}

func ExampleNew() {
	roller, err := rollerr.New(&rollerr.Config{
		Filename: "/var/log/service.log",
		MaxBytes: 10 * 1024 * 1024,
	})
	if err != nil {
		panic(err)
	}

	log.SetOutput(roller)
}

func ExampleNewMust() {
	log.SetOutput(rollerr.NewMust(&rollerr.Config{
		Filename:    "/var/log/service.log",
		DatePattern: dateroll.PatternHourly,
		DaysToKeep:  7,
	}))
}

// Rotate a log on SIGHUP signal.
func ExampleRoller_Rotate() {
	roller := rollerr.NewMust(&rollerr.Config{
		Filename: "/var/log/service.log",
		MaxBytes: 10 * 1024 * 1024,
	})
	log.SetOutput(roller)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP)

	go func() {
		<-sigc

		_, err := roller.Rotate()
		if err != nil {
			panic(err)
		}
	}()
}

// Errors from queued writes and background rotations have no caller to
// return to; drain the Errors channel if you want to see them.
func ExampleRoller_Errors() {
	roller := rollerr.NewMust(&rollerr.Config{
		Filename: "/var/log/service.log",
		MaxBytes: 10 * 1024 * 1024,
	})

	go func() {
		for err := range roller.Errors() {
			log.Printf("log file problem: %v", err)
		}
	}()

	roller.Enqueue([]byte("this write does not block\n"))
}

// Example_compressorCaptureOutput shows how to capture the response from a
// post-rotate compression so you can do whatever you want with it. The
// Config's Compress flag does all of this wiring for you; build it by hand
// when you need the report. Date-labeled files work best here: a numbered
// backup may be renamed again while the compressor is still reading it.
func Example_compressorCaptureOutput() {
	squash := compressor.New(&compressor.Gzip{Level: 6})

	roller, err := rollerr.New(&rollerr.Config{
		Filename: "/var/log/file.log",
		Policy: &dateroll.Layout{
			Pattern: dateroll.DefaultPattern,
			PostRotate: func(_, fileName string) {
				squash.Background(fileName, func(report *compressor.Report) {
					if report.Error != nil {
						log.Printf("[Rollerr] Error: %v", report.Error)
					} else {
						log.Printf("[Rollerr] Compressed: %s -> %s", report.OldFile, report.NewFile)
					}
				})
			},
		},
	})
	if err != nil {
		panic(err)
	}

	log.SetOutput(roller)
}
