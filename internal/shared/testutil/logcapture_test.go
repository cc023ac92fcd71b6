package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	t.Run("captures messages and attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("dataset loaded", slog.Int("records", 4))
		logger.Error("load failed", slog.String("source", "text"))

		require.Equal(t, 2, handler.Count())
		rec, ok := handler.Find("loaded")
		require.True(t, ok)
		assert.Equal(t, int64(4), rec.Attrs["records"])
		assert.Len(t, handler.RecordsAt(slog.LevelError), 1)
	})

	t.Run("bound attributes reach records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "processor")).
			WithGroup("load").
			Info("parsed", slog.Int("rows", 3))

		rec, ok := handler.Find("parsed")
		require.True(t, ok)
		assert.Equal(t, "processor", rec.Attrs["component"])
		assert.Equal(t, int64(3), rec.Attrs["load.rows"])
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		child := logger.With(slog.String("component", "files"))

		logger.Info("one")
		child.Info("two")

		assert.Equal(t, 2, handler.Count())
		handler.Clear()
		assert.Zero(t, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Warn("rows dropped", slog.Int("count", 2))

		AssertLogged(t, handler, slog.LevelWarn, "dropped")
		AssertNoErrors(t, handler)
	})

	t.Run("concurrent logging", func(t *testing.T) {
		logger, handler := NewTestLogger(nil)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}

func TestWriteFile(t *testing.T) {
	dir, path := WriteFile(t, "cases.csv", []byte(HeaderTable))

	assert.DirExists(t, dir)
	assert.FileExists(t, path)
}
