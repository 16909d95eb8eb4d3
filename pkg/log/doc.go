// Package log provides relay's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by zerolog; callers never
// touch zerolog directly so the backend can change without touching the
// rest of the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.FormatText),
//	    log.WithWriter(os.Stderr),
//	)
//	l = l.With(log.Component("registry"), log.Str("channel", "PING"))
//	l.Info("channel created", log.Int("listeners", 0))
//
// Use NewNop in tests and in library code that was not handed a logger.
package log
