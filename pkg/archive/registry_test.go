package archive

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry(t *testing.T) {
	logger := zap.NewNop()

	t.Run("registered backend builds its engine", func(t *testing.T) {
		registry := NewRegistry()
		expected := newFakeEngine()
		var gotOpts Options
		registry.Register("fake", func(_ *zap.Logger, opts Options) (Engine, error) {
			gotOpts = opts
			return expected, nil
		})

		engine, err := registry.Engine("fake", logger, Options{Method: MethodZstd, Level: 3})

		require.NoError(t, err)
		assert.Same(t, expected, engine)
		assert.Equal(t, Options{Method: MethodZstd, Level: 3}, gotOpts)
		assert.True(t, registry.Has("fake"))
	})

	t.Run("unknown backend lists the available ones", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register("zeta", func(*zap.Logger, Options) (Engine, error) { return newFakeEngine(), nil })
		registry.Register("alpha", func(*zap.Logger, Options) (Engine, error) { return newFakeEngine(), nil })

		engine, err := registry.Engine("missing", logger, DefaultOptions())

		require.Error(t, err)
		assert.Nil(t, engine)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, `unsupported backend "missing" (available: [alpha zeta])`, err.Error())
		assert.False(t, registry.Has("missing"))
	})

	t.Run("empty registry", func(t *testing.T) {
		registry := NewRegistry()

		_, err := registry.Engine("missing", logger, DefaultOptions())

		assert.EqualError(t, err, `unsupported backend "missing": no backends registered`)
		assert.Empty(t, registry.Available())
	})

	t.Run("factory error is wrapped", func(t *testing.T) {
		registry := NewRegistry()
		boom := errors.New("boom")
		registry.Register("fake", func(*zap.Logger, Options) (Engine, error) { return nil, boom })

		_, err := registry.Engine("fake", logger, DefaultOptions())

		require.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "failed to create fake engine")
	})

	t.Run("concurrent registration", func(t *testing.T) {
		registry := NewRegistry()
		var wg sync.WaitGroup
		for _, name := range []Backend{"a", "b", "c", "d"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				registry.Register(name, func(*zap.Logger, Options) (Engine, error) { return newFakeEngine(), nil })
				_ = registry.Available()
			}()
		}
		wg.Wait()

		assert.Equal(t, []Backend{"a", "b", "c", "d"}, registry.Available())
	})
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "zero value defaults to deflate", opts: Options{}},
		{name: "store", opts: Options{Method: MethodStore}},
		{name: "store with level", opts: Options{Method: MethodStore, Level: 3}, wantErr: true},
		{name: "deflate best", opts: Options{Method: MethodDeflate, Level: 9}},
		{name: "deflate huffman only", opts: Options{Method: MethodDeflate, Level: -2}},
		{name: "deflate too high", opts: Options{Method: MethodDeflate, Level: 10}, wantErr: true},
		{name: "zstd default", opts: Options{Method: MethodZstd}},
		{name: "zstd max", opts: Options{Method: MethodZstd, Level: 22}},
		{name: "zstd negative", opts: Options{Method: MethodZstd, Level: -1}, wantErr: true},
		{name: "unknown method", opts: Options{Method: "lzma"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
		})
	}
}
