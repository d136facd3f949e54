package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// RelayLoggerName names the logger used by the queued host event relay.
const RelayLoggerName = "idcapture.relay"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	resolvedProvider, resolvedLogger := glog.Resolve(name, provider, logger)
	return resolvedProvider, glog.Ensure(resolvedLogger)
}

// RelayLogger resolves the relay logger and returns it in the go-job logger
// contract expected by worker hooks.
func RelayLogger(provider glog.LoggerProvider, logger glog.Logger) job.Logger {
	resolvedProvider, resolvedLogger := Resolve(RelayLoggerName, provider, logger)
	if resolvedProvider != nil {
		if jobProvider := job.GoLoggerProvider(resolvedProvider); jobProvider != nil {
			if named := jobProvider.GetLogger(RelayLoggerName); named != nil {
				return named
			}
		}
	}
	return job.GoLogger(resolvedLogger)
}
