// Package rollerr is a log rotation module designed to plug directly into a
// standard go logger. One worker go routine owns the log file and processes
// every write, flush, and rotation in arrival order, so log lines are never
// interleaved or lost across a rotation. Additional packages are included to
// facilitate backup-file naming in different formats, compression, and
// retention of old backups.
//
// The New() methods return a simple io.WriteCloser that works with most log
// packages. Rotation is driven by a Policy: sizeroll rolls once the file
// grows past a byte threshold and numbers its backups, dateroll rolls when a
// date label changes and stamps its backups with the label. Both are built
// from the Config, or bring your own Policy. Inspired by
// Lumberjack: https://github.com/natefinch/lumberjack.
//
// Use this package if you write your own log file, and you're tired of your
// log file growing indefinitely.
//
//	https://pkg.go.dev/golift.io/rollerr/sizeroll
//	https://pkg.go.dev/golift.io/rollerr/dateroll
//	https://pkg.go.dev/golift.io/rollerr/compressor
//	https://pkg.go.dev/golift.io/rollerr/pruner
package rollerr
