package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestQueryLoggerReportsFailuresAndSlowStatements(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ql := newQueryLogger(50 * time.Millisecond)
	ql.log = zap.New(core)

	stmt := func() (string, int64) { return "SELECT * FROM ads", 3 }
	ctx := context.Background()

	ql.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	require.Zero(t, logs.Len())

	ql.Trace(ctx, time.Now(), stmt, errors.New("disk I/O error"))
	require.Equal(t, 1, logs.FilterMessage("query failed").Len())

	ql.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	slow := logs.FilterMessage("slow query").All()
	require.Len(t, slow, 1)
	require.Equal(t, "SELECT * FROM ads", slow[0].ContextMap()["sql"])

	silent := ql.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now().Add(-time.Second), stmt, errors.New("ignored"))
	require.Equal(t, 2, logs.Len())
}
