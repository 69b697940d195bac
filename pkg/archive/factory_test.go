package archive

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "bundle.zip", want: true},
		{path: "dir/Bundle.ZIP", want: true},
		{path: "bundle.Zip", want: true},
		{path: "bundle.tar.gz", want: false},
		{path: "bundle.zip.bak", want: false},
		{path: "zip", want: false},
		{path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.path))
		})
	}
}

func TestFactory_UnsupportedFormat(t *testing.T) {
	for _, access := range []Access{OpenReadOnly, OpenWrite} {
		t.Run(access.String(), func(t *testing.T) {
			engine := newFakeEngine()
			factory, fsys := newTestFactory(t, engine)

			a, err := factory.Open("/data/bundle.tar", access, "fake")

			require.ErrorIs(t, err, ErrUnsupportedFormat)
			assert.Nil(t, a)
			assert.Zero(t, fsys.stats, "no filesystem access before the format check")
			assert.Zero(t, fsys.opens)
			assert.Empty(t, engine.calls)
		})
	}
}

func TestFactory_UnknownBackend(t *testing.T) {
	factory, fsys := newTestFactory(t, newFakeEngine())

	_, err := factory.OpenWrite("/data/bundle.zip", "nope")

	require.ErrorIs(t, err, ErrInvalidArgument)
	var backendErr *UnsupportedBackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, Backend("nope"), backendErr.Backend)
	assert.Equal(t, []Backend{"fake"}, backendErr.Available)
	assert.Zero(t, fsys.stats)
}

func TestFactory_UnknownAccess(t *testing.T) {
	factory, _ := newTestFactory(t, newFakeEngine())

	_, err := factory.Open("/data/bundle.zip", Access(42), "fake")

	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFactory_InvalidOptions(t *testing.T) {
	registry := NewRegistry()
	registry.Register("fake", func(*zap.Logger, Options) (Engine, error) { return newFakeEngine(), nil })
	factory := NewFactory(registry, WithFs(afero.NewMemMapFs()), WithOptions(Options{Method: "lzma"}))

	_, err := factory.OpenWrite("/data/bundle.zip", "fake")

	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFactory_OpenReadOnly(t *testing.T) {
	t.Run("missing container", func(t *testing.T) {
		factory, _ := newTestFactory(t, newFakeEngine())

		_, err := factory.OpenReadOnly("/data/missing.zip", "fake")

		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		factory, fsys := newTestFactory(t, newFakeEngine())
		require.NoError(t, fsys.MkdirAll("/data/dir.zip", 0o755))

		_, err := factory.OpenReadOnly("/data/dir.zip", "fake")

		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("handle is opened on first use", func(t *testing.T) {
		engine := newFakeEngine("a.txt", "alpha")
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "PK")
		opensBefore := fsys.opens

		a, err := factory.OpenReadOnly("/data/bundle.zip", "fake")
		require.NoError(t, err)
		assert.Equal(t, ModeRead, a.Mode())
		assert.Equal(t, Backend("fake"), a.Backend())
		assert.Equal(t, "/data/bundle.zip", a.Path())

		c := a.(*container)
		assert.False(t, c.handle.Opened())
		assert.Equal(t, opensBefore, fsys.opens)
		assert.Empty(t, engine.calls)

		entries, err := a.Entries()
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.True(t, c.handle.Opened())
		assert.Equal(t, opensBefore+1, fsys.opens)
		assert.Equal(t, []string{"open-read"}, engine.calls)

		require.NoError(t, a.Close())
	})

	t.Run("never used archive closes without opening", func(t *testing.T) {
		engine := newFakeEngine()
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "PK")
		opensBefore := fsys.opens

		a, err := factory.OpenReadOnly("/data/bundle.zip", "fake")
		require.NoError(t, err)
		require.NoError(t, a.Close())

		assert.Equal(t, opensBefore, fsys.opens)
		assert.Empty(t, engine.calls)
	})

	t.Run("session without read capability", func(t *testing.T) {
		engine := newFakeEngine()
		engine.writeOnly = true
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "PK")

		a, err := factory.OpenReadOnly("/data/bundle.zip", "fake")
		require.NoError(t, err)

		_, err = a.Entries()
		require.ErrorIs(t, err, ErrInvalidOperation)
		require.NoError(t, a.Close())
	})
}

func TestFactory_OpenWrite(t *testing.T) {
	t.Run("missing container is created", func(t *testing.T) {
		engine := newFakeEngine()
		factory, fsys := newTestFactory(t, engine)

		a, err := factory.OpenWrite("/data/nested/bundle.zip", "fake")
		require.NoError(t, err)

		assert.Equal(t, ModeWrite, a.Mode())
		assert.Equal(t, []string{"open-create"}, engine.calls)
		assert.Zero(t, fsys.removes)
		exists, err := afero.Exists(fsys, "/data/nested/bundle.zip")
		require.NoError(t, err)
		assert.True(t, exists)
		require.NoError(t, a.Close())
	})

	t.Run("zero-length stub is removed then created", func(t *testing.T) {
		engine := newFakeEngine()
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "")

		a, err := factory.OpenWrite("/data/bundle.zip", "fake")
		require.NoError(t, err)

		assert.Equal(t, ModeWrite, a.Mode())
		assert.Equal(t, 1, fsys.removes)
		assert.Equal(t, []string{"open-create"}, engine.calls)
		require.NoError(t, a.Close())
	})

	t.Run("non-empty container is updated", func(t *testing.T) {
		engine := newFakeEngine("a.txt", "alpha")
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "PK")

		a, err := factory.OpenWrite("/data/bundle.zip", "fake")
		require.NoError(t, err)

		assert.Equal(t, ModeReadWrite, a.Mode())
		assert.Zero(t, fsys.removes)
		assert.Equal(t, []string{"open-update"}, engine.calls)
		require.NoError(t, a.Close())
	})

	t.Run("engine failure is returned", func(t *testing.T) {
		engine := newFakeEngine()
		engine.openErr = errors.New("corrupt container")
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "garbage")

		a, err := factory.OpenWrite("/data/bundle.zip", "fake")

		require.Error(t, err)
		assert.Nil(t, a)
		assert.ErrorContains(t, err, "corrupt container")
	})

	t.Run("session missing a capability is rejected", func(t *testing.T) {
		engine := newFakeEngine("a.txt", "alpha")
		engine.readOnly = true
		factory, fsys := newTestFactory(t, engine)
		writeFile(t, fsys, "/data/bundle.zip", "PK")

		_, err := factory.OpenWrite("/data/bundle.zip", "fake")

		require.ErrorIs(t, err, ErrInvalidOperation)
		assert.Contains(t, engine.calls, "close")
	})
}
