//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"bytes"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/obinnaokechukwu/spgo/enum"
	"github.com/obinnaokechukwu/spgo/event"
	"github.com/obinnaokechukwu/spgo/handle"
	"github.com/obinnaokechukwu/spgo/internal/handles"
	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/libspotify"
	"github.com/obinnaokechukwu/spgo/load"
)

func TestImageEnums(t *testing.T) {
	assert.Equal(t, "ImageFormat.JPEG: 0", ImageFormatJPEG.String())
	assert.Equal(t, "ImageFormat.UNKNOWN: -1", ImageFormatUnknown.String())
	assert.Same(t, ImageSizeLarge, ImageSizes.MustLookup(2))
	assert.Len(t, ImageSizes.Values(), 3)
}

func TestWrapImageRetainsAndCloseReleasesOnce(t *testing.T) {
	installFake(t)
	registered := handles.Count()

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())
	assert.EqualValues(t, 2, fi.refs.Load())
	assert.Equal(t, 1, fi.numCallbacks())
	assert.Equal(t, registered+1, handles.Count())

	require.NoError(t, img.Close())
	require.NoError(t, img.Close())

	assert.EqualValues(t, 1, fi.refs.Load(), "caller's reference is untouched")
	assert.Zero(t, fi.numCallbacks())
	assert.Equal(t, registered, handles.Count())
}

func TestAdoptImageDoesNotRetain(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	img := AdoptImage(fi.ptr())
	assert.EqualValues(t, 1, fi.refs.Load())

	require.NoError(t, img.Close())
	assert.Zero(t, fi.refs.Load())
}

func TestImageUseAfterClosePanics(t *testing.T) {
	installFake(t)

	img := WrapImage(newFakeImage(1).ptr())
	require.NoError(t, img.Close())

	assert.PanicsWithError(t, "handle: use of released handle (unsafe.Pointer)", func() { img.IsLoaded() })
	assert.Equal(t, "Image(closed)", img.String())
}

func TestWrapNilImagePanics(t *testing.T) {
	installFake(t)
	assert.Panics(t, func() { WrapImage(nil) })
}

func TestImageAccessorsBeforeLoad(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	fi.data = []byte("jpeg bytes")
	img := WrapImage(fi.ptr())
	defer img.Close()

	assert.False(t, img.IsLoaded())
	assert.Nil(t, img.DataFormat())
	assert.Nil(t, img.Data())

	uri, err := img.DataURI()
	require.NoError(t, err)
	assert.Empty(t, uri)

	assert.Equal(t, fi.id, img.ID(), "id is available before load")
}

func TestImageError(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())
	defer img.Close()

	got, err := img.Error()
	require.NoError(t, err)
	assert.Same(t, ErrorIsLoading, got)

	fi.errCode.Store(0)
	got, err = img.Error()
	require.NoError(t, err)
	assert.Same(t, ErrorOK, got)

	fi.errCode.Store(4)
	_, err = img.Error()
	assert.ErrorIs(t, err, enum.ErrUnknownValue)
}

func TestImageDataURI(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	fi.data = []byte("abc")
	fi.loaded.Store(true)
	img := WrapImage(fi.ptr())
	defer img.Close()

	assert.Same(t, ImageFormatJPEG, img.DataFormat())
	assert.Equal(t, []byte("abc"), img.Data())

	uri, err := img.DataURI()
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,YWJj", uri)
}

func TestImageDataURIUnknownFormat(t *testing.T) {
	installFake(t)

	for _, format := range []int32{-1, 7} {
		fi := newFakeImage(1)
		fi.format = format
		fi.loaded.Store(true)
		img := WrapImage(fi.ptr())

		assert.Same(t, ImageFormatUnknown, img.DataFormat())
		_, err := img.DataURI()
		assert.ErrorIs(t, err, ErrUnknownImageFormat)
		require.NoError(t, img.Close())
	}
}

func TestImageLoadPumpsSession(t *testing.T) {
	f := installFake(t)
	_, err := AttachSession(fakeSession())
	require.NoError(t, err)

	fi := newFakeImage(1)
	f.setOnProcess(func(call int) {
		if call == 3 {
			fi.loaded.Store(true)
		}
	})
	img := WrapImage(fi.ptr())
	defer img.Close()

	got, err := img.Load(time.Second)
	require.NoError(t, err)
	assert.Same(t, img, got)
	assert.EqualValues(t, 3, f.processCalls.Load())
}

func TestImageLoadTimesOut(t *testing.T) {
	f := installFake(t)
	s, err := AttachSession(fakeSession())
	require.NoError(t, err)

	img, err := NewImageFromID(s, bytes.Repeat([]byte{1}, 20))
	require.NoError(t, err)
	defer img.Close()

	_, err = img.Load(20 * time.Millisecond)
	assert.ErrorIs(t, err, load.ErrTimeout)
	assert.Positive(t, f.processCalls.Load())
}

func TestImageLoadZeroTimeoutDoesNotPump(t *testing.T) {
	f := installFake(t)
	_, err := AttachSession(fakeSession())
	require.NoError(t, err)

	img := WrapImage(newFakeImage(1).ptr())
	defer img.Close()

	_, err = img.Load(0)
	assert.ErrorIs(t, err, load.ErrTimeout)
	assert.Zero(t, f.processCalls.Load())
}

func TestImageLoadWakesOnCallback(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())
	defer img.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		fi.finish()
	}()

	// No session: only the load callback can end the wait early.
	start := time.Now()
	_, err := img.Load(5 * time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestImageLoadedListeners(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())
	defer img.Close()

	var got [][]any
	keep := event.Listen(func(args ...any) bool {
		got = append(got, args)
		return true
	})
	once := event.Listen(func(args ...any) bool {
		got = append(got, append([]any{"once"}, args...))
		return false
	})
	img.OnLoaded(keep, "cover")
	img.OnLoaded(once)

	fi.finish()
	select {
	case <-img.LoadedSignal():
	default:
		t.Fatal("loaded signal not closed")
	}
	assert.Equal(t, [][]any{{"cover"}, {"once"}}, got)

	got = nil
	fi.finish()
	assert.Equal(t, [][]any{{"cover"}}, got, "listener returning false is dropped")

	img.OffLoaded(keep)
	got = nil
	fi.finish()
	assert.Empty(t, got)
}

func TestImageListenerPanicStaysOnCallbackThread(t *testing.T) {
	installFake(t)
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())
	defer img.Close()
	img.OnLoaded(event.Listen(func(...any) bool { panic("boom") }))

	assert.NotPanics(t, fi.finish)
	assert.Equal(t, 1, logs.FilterMessage("image loaded listener panicked").Len())
}

func TestImageCallbackAfterCloseIsIgnored(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())

	var userdata uintptr
	fi.mu.Lock()
	for ud := range fi.callbacks {
		userdata = ud
	}
	fi.mu.Unlock()

	fired := false
	img.OnLoaded(event.Listen(func(...any) bool { fired = true; return true }))
	require.NoError(t, img.Close())

	assert.NotPanics(t, func() { imageLoadedTrampoline(fi.ptr(), userdata) })
	assert.False(t, fired)
}

func TestImageFinalizerReleases(t *testing.T) {
	installFake(t)
	registered := handles.Count()

	fi := newFakeImage(1)
	func() {
		img := WrapImage(fi.ptr())
		require.EqualValues(t, 2, fi.refs.Load())
		_ = img
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return fi.refs.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, fi.numCallbacks())
	assert.Equal(t, registered, handles.Count())
}

//go:noinline
func isLoadedOnce(fi *fakeImage) bool {
	return WrapImage(fi.ptr()).IsLoaded()
}

func TestImageNotFinalizedDuringNativeCall(t *testing.T) {
	installFake(t)

	fi := newFakeImage(1)
	var releasedMidCall atomic.Bool
	isLoaded := native.imageIsLoaded
	native.imageIsLoaded = func(p libspotify.Image) bool {
		for range 3 {
			runtime.GC()
			time.Sleep(5 * time.Millisecond)
		}
		if asImage(p).refs.Load() < 2 {
			releasedMidCall.Store(true)
		}
		return isLoaded(p)
	}

	isLoadedOnce(fi)
	assert.False(t, releasedMidCall.Load(), "sp_image released while sp_image_is_loaded ran")

	require.Eventually(t, func() bool {
		runtime.GC()
		return fi.refs.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestImageLoadCallbackFailureIsLogged(t *testing.T) {
	installFake(t)
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	native.imageAddLoadCallback = func(libspotify.Image, uintptr, uintptr) int32 { return 1 }

	fi := newFakeImage(1)
	img := WrapImage(fi.ptr())
	defer img.Close()

	entries := logs.FilterMessage("image load callback not registered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.EqualValues(t, 1, entries[0].ContextMap()["code"])
	assert.Zero(t, fi.numCallbacks())
}

func TestNewImageFromID(t *testing.T) {
	installFake(t)
	id := bytes.Repeat([]byte{0x42}, 20)

	_, err := NewImageFromID(nil, id)
	assert.ErrorIs(t, err, ErrNoSession)

	s, err := AttachSession(fakeSession())
	require.NoError(t, err)

	_, err = NewImageFromID(s, id[:5])
	assert.ErrorIs(t, err, ErrInvalidImageID)

	img, err := NewImageFromID(nil, id)
	require.NoError(t, err)
	assert.Equal(t, id, img.ID())
	assert.Equal(t, "Image(4242424242424242424242424242424242424242)", img.String())

	fi := asImage(handle.Use(img.ref, func(p libspotify.Image) libspotify.Image { return p }))
	assert.EqualValues(t, 1, fi.refs.Load(), "created image is adopted, not retained")
	require.NoError(t, img.Close())
	assert.Zero(t, fi.refs.Load())
}
