package downloader

// Logger is the subset of logging methods the fetcher uses.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}
