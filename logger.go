package main

import (
	"github.com/geolocator/geolocator/geolib"
	log "github.com/sirupsen/logrus"
)

type logger struct {
	lookupLog *log.Entry
	cacheLog  *log.Entry
}

func (l *logger) LookupError(hostname string, code geolib.ErrorCode, err error) {
	l.lookupLog.WithError(err).WithFields(log.Fields{
		"hostname": hostname,
		"code":     code,
	}).Error("lookup has failed")
}

func (l *logger) CacheError(table, rowKey string, err error) {
	l.cacheLog.WithError(err).WithFields(log.Fields{
		"table":   table,
		"row_key": rowKey,
	}).Warn("cache is unavailable")
}

func newLogger(base *log.Logger) geolib.Logger {
	return &logger{
		lookupLog: base.WithField("event_name", "lookup"),
		cacheLog:  base.WithField("event_name", "cache"),
	}
}
